package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCountersConcurrent(t *testing.T) {
	c := New(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc(Total)
			c.Inc(Processed)
		}()
	}
	wg.Wait()
	c.Add(Charts, 3)

	snap := c.Snapshot()
	assert.Equal(t, int64(50), snap.Get(Total))
	assert.Equal(t, int64(50), snap.Get(Processed))
	assert.Equal(t, int64(3), snap.Get(Charts))
	assert.Equal(t, []string{Charts, Processed, Total}, snap.Names())
}

func TestRedisMirror(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	m, err := NewRedisMirror(ctx, mr.Addr(), "")
	require.NoError(t, err)
	defer m.Close()

	c := New(m, nil)
	c.Inc(Total)
	c.Inc(Total)
	c.Inc(OCR)

	assert.Equal(t, "2", mr.HGet(DefaultRedisKey, Total))
	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded[OCR])
}

func TestRedisMirrorUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewRedisMirror(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}

func TestRunFlushesOnStop(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := New(nil, zap.New(core))
	c.Inc(Commands)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done

	entries := logs.FilterMessage("message statistics").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()[Commands])
}
