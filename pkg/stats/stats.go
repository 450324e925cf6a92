// Package stats counts message handling outcomes for the lifetime of the process.
package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Counter names
const (
	Total               = "total"
	Processed           = "processed"
	IgnoredGroup        = "ignored.group"
	IgnoredBroadcast    = "ignored.broadcast"
	IgnoredNonPrivate   = "ignored.non_private"
	IgnoredUnauthorized = "ignored.unauthorized"
	Commands            = "commands"
	Transactions        = "transactions"
	QuickMenu           = "quick_menu"
	Charts              = "charts"
	OCR                 = "ocr"
	Attendance          = "attendance"
	Errors              = "errors"
)

// Mirror receives every increment, e.g. to share counters between replicas.
type Mirror interface {
	Incr(ctx context.Context, name string, delta int64) error
}

// Counters is a process-wide set of named counters, reset on start.
type Counters struct {
	mu      sync.Mutex
	counts  map[string]int64
	started time.Time
	mirror  Mirror
	log     *zap.Logger
}

// New returns empty counters. mirror may be nil.
func New(mirror Mirror, log *zap.Logger) *Counters {
	if log == nil {
		log = zap.NewNop()
	}
	return &Counters{counts: make(map[string]int64), started: time.Now(), mirror: mirror, log: log}
}

// Inc adds one to name.
func (c *Counters) Inc(name string) {
	c.Add(name, 1)
}

// Add adds delta to name. Mirror failures are logged and otherwise ignored.
func (c *Counters) Add(name string, delta int64) {
	c.mu.Lock()
	c.counts[name] += delta
	c.mu.Unlock()
	if c.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := c.mirror.Incr(ctx, name, delta); err != nil {
			c.log.Debug("stats mirror increment failed", zap.String("counter", name), zap.Error(err))
		}
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Since  time.Time
	Counts map[string]int64
}

// Get returns one counter.
func (s Snapshot) Get(name string) int64 { return s.Counts[name] }

// Names returns the counter names in sorted order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Counts))
	for n := range s.Counts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return Snapshot{Since: c.started, Counts: out}
}

// Flush writes the counters to the log.
func (c *Counters) Flush() {
	snap := c.Snapshot()
	fields := []zap.Field{zap.Duration("uptime", time.Since(snap.Since).Round(time.Second))}
	for _, n := range snap.Names() {
		fields = append(fields, zap.Int64(n, snap.Counts[n]))
	}
	c.log.Info("message statistics", fields...)
}

// Run flushes every interval until ctx is done, then flushes once more.
func (c *Counters) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Flush()
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}
