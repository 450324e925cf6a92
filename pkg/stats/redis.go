package stats

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is the hash holding mirrored counters.
const DefaultRedisKey = "keubot:stats"

// RedisMirror mirrors counters into one Redis hash.
type RedisMirror struct {
	Client *redis.Client
	Key    string
}

// NewRedisMirror connects to addr and pings it.
func NewRedisMirror(ctx context.Context, addr, password string) (*RedisMirror, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisMirror{Client: client, Key: DefaultRedisKey}, nil
}

// Incr increments one hash field.
func (m *RedisMirror) Incr(ctx context.Context, name string, delta int64) error {
	return m.Client.HIncrBy(ctx, m.Key, name, delta).Err()
}

// Load reads the mirrored totals.
func (m *RedisMirror) Load(ctx context.Context) (map[string]int64, error) {
	raw, err := m.Client.HGetAll(ctx, m.Key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			out[k] = n
		}
	}
	return out, nil
}

// Close closes the client.
func (m *RedisMirror) Close() error { return m.Client.Close() }
