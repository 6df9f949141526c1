package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolDefaults(t *testing.T) {
	p, err := NewPool("test", DefaultPool, nil)
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, "test", p.Name())
	assert.Equal(t, DefaultPool, p.Type())
	assert.Equal(t, DefaultPoolConfig().Capacity, p.Cap())
}

func TestIngestPoolConfig(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit workers", 8, 8},
		{"zero falls back", 0, 4},
		{"negative falls back", -1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := IngestPoolConfig(tt.workers)
			assert.Equal(t, tt.want, cfg.Capacity)
			assert.False(t, cfg.Nonblocking)
		})
	}
}

func TestSubmitRunsTasks(t *testing.T) {
	p, err := NewPool("assist-ingest", IngestPool, IngestPoolConfig(2))
	require.NoError(t, err)
	defer p.Release()

	var wg sync.WaitGroup
	var done atomic.Int64
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			done.Add(1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int64(10), done.Load())

	// 完成计数在任务返回后更新
	assert.Eventually(t, func() bool {
		stats := p.Stats()
		return stats.SubmittedTasks == 10 && stats.CompletedTasks == 10
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, p.Stats().FailedTasks)
}

func TestSubmitAfterRelease(t *testing.T) {
	p, err := NewPool("test", DefaultPool, DefaultPoolConfig())
	require.NoError(t, err)

	p.Release()

	err = p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSubmitPanicRecovered(t *testing.T) {
	cfg := IngestPoolConfig(1)
	cfg.PanicHandler = func(interface{}) {}

	p, err := NewPool("test", IngestPool, cfg)
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Submit(func() {
		panic("boom")
	}))

	assert.Eventually(t, func() bool {
		return p.Stats().PanicRecovered == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitWithContextCancelled(t *testing.T) {
	p, err := NewPool("test", DefaultPool, DefaultPoolConfig())
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.SubmitWithContext(ctx, func() {
		t.Error("task should not run after cancellation")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTune(t *testing.T) {
	p, err := NewPool("test", IngestPool, IngestPoolConfig(2))
	require.NoError(t, err)
	defer p.Release()

	p.Tune(6)
	assert.Equal(t, 6, p.Cap())
}
