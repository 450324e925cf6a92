// Package media obtains inbound image bytes and stores attendance photos.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnavailable is returned when every source failed.
	ErrUnavailable = errors.New("media unavailable")
	// ErrNotApplicable is returned by a source that cannot serve the ref.
	ErrNotApplicable = errors.New("source not applicable")
)

// DefaultTimeout bounds each source attempt.
const DefaultTimeout = 30 * time.Second

// Ref identifies the media attached to an inbound message.
type Ref struct {
	MessageID string
	MimeType  string
	URL       string
	Data      []byte
	SpoolFile string
}

// Source is one way of obtaining media bytes.
type Source interface {
	Name() string
	Fetch(ctx context.Context, ref Ref) ([]byte, error)
}

// Downloader tries its sources in order, each under its own timeout.
type Downloader struct {
	sources []Source
	timeout time.Duration
	log     *zap.Logger
}

// NewDownloader builds a downloader over sources.
func NewDownloader(timeout time.Duration, log *zap.Logger, sources ...Source) *Downloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{sources: sources, timeout: timeout, log: log}
}

// Download returns the first non-empty result, ErrUnavailable when none.
func (d *Downloader) Download(ctx context.Context, ref Ref) ([]byte, error) {
	for _, s := range d.sources {
		attempt, cancel := context.WithTimeout(ctx, d.timeout)
		b, err := s.Fetch(attempt, ref)
		cancel()
		if err == nil && len(b) > 0 {
			return b, nil
		}
		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		d.log.Warn("media source failed", zap.String("source", s.Name()), zap.String("message_id", ref.MessageID), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, ErrUnavailable
}

// Inline serves bytes already carried by the message.
type Inline struct{}

func (Inline) Name() string { return "inline" }

func (Inline) Fetch(_ context.Context, ref Ref) ([]byte, error) {
	if len(ref.Data) == 0 {
		return nil, ErrNotApplicable
	}
	return ref.Data, nil
}

// HTTP downloads ref.URL.
type HTTP struct {
	Client   *http.Client
	Token    string
	MaxBytes int64
}

func (h *HTTP) Name() string { return "http" }

func (h *HTTP) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	if ref.URL == "" {
		return nil, ErrNotApplicable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, err
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", ref.URL, resp.StatusCode)
	}
	max := h.MaxBytes
	if max <= 0 {
		max = 20 << 20
	}
	return io.ReadAll(io.LimitReader(resp.Body, max))
}
