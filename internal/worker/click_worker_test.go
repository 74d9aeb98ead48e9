package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClickStore struct {
	mu         sync.Mutex
	clicks     map[string]int64
	calls      atomic.Int32
	delay      time.Duration
	shouldFail bool
}

func newMockClickStore() *mockClickStore {
	return &mockClickStore{clicks: make(map[string]int64)}
}

func (m *mockClickStore) IncrementClicks(_ context.Context, code string, delta int64) error {
	m.calls.Add(1)

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	if m.shouldFail {
		return assert.AnError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks[code] += delta
	return nil
}

func (m *mockClickStore) Get(code string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clicks[code]
}

func TestNewClickWorkerPool(t *testing.T) {
	store := newMockClickStore()
	config := Config{WorkerCount: 3, BufferSize: 10, BatchSize: 5, BatchTimeout: time.Second}

	pool := NewClickWorkerPool(store, config)

	assert.NotNil(t, pool)
	assert.Equal(t, 3, pool.workerCount)
	assert.Equal(t, 5, pool.batchSize)
	assert.Equal(t, time.Second, pool.batchTimeout)
	assert.Equal(t, 10, cap(pool.clicks))
}

func TestNewClickWorkerPool_FillsDefaults(t *testing.T) {
	pool := NewClickWorkerPool(newMockClickStore(), Config{})
	defaults := DefaultConfig()

	assert.Equal(t, defaults.WorkerCount, pool.workerCount)
	assert.Equal(t, defaults.BatchSize, pool.batchSize)
	assert.Equal(t, defaults.BatchTimeout, pool.batchTimeout)
	assert.Equal(t, defaults.BufferSize, cap(pool.clicks))
}

func TestClickWorkerPool_FlushOnTimeout(t *testing.T) {
	store := newMockClickStore()
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  1,
		BufferSize:   10,
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
	})
	pool.Start()
	defer pool.Shutdown(time.Second)

	require.NoError(t, pool.RecordClick(context.Background(), "abc"))
	require.NoError(t, pool.RecordClick(context.Background(), "abc"))

	assert.Eventually(t, func() bool {
		return store.Get("abc") == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestClickWorkerPool_FlushOnBatchSize(t *testing.T) {
	store := newMockClickStore()
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  1,
		BufferSize:   10,
		BatchSize:    3,
		BatchTimeout: time.Hour,
	})
	pool.Start()
	defer pool.Shutdown(time.Second)

	for i := 0; i < 3; i++ {
		require.NoError(t, pool.RecordClick(context.Background(), "code"))
	}

	assert.Eventually(t, func() bool {
		return store.Get("code") == 3
	}, time.Second, 10*time.Millisecond)
}

func TestClickWorkerPool_ConcurrentClicks(t *testing.T) {
	store := newMockClickStore()
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  4,
		BufferSize:   16,
		BatchSize:    7,
		BatchTimeout: 20 * time.Millisecond,
	})
	pool.Start()

	const goroutines = 10
	const clicksPerGoroutine = 25

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			code := "even"
			if id%2 == 1 {
				code = "odd"
			}
			for j := 0; j < clicksPerGoroutine; j++ {
				assert.NoError(t, pool.RecordClick(context.Background(), code))
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, pool.Shutdown(2*time.Second))

	assert.Equal(t, int64(goroutines/2*clicksPerGoroutine), store.Get("even"))
	assert.Equal(t, int64(goroutines/2*clicksPerGoroutine), store.Get("odd"))
}

func TestClickWorkerPool_GracefulShutdownDrains(t *testing.T) {
	store := newMockClickStore()
	store.delay = 10 * time.Millisecond
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  2,
		BufferSize:   10,
		BatchSize:    100,
		BatchTimeout: time.Hour,
	})
	pool.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, pool.RecordClick(context.Background(), "drain"))
	}

	require.NoError(t, pool.Shutdown(2*time.Second))
	assert.Equal(t, int64(5), store.Get("drain"))

	assert.ErrorIs(t, pool.RecordClick(context.Background(), "drain"), ErrPoolClosed)
	assert.NoError(t, pool.Shutdown(time.Second))
}

func TestClickWorkerPool_ErrorHandling(t *testing.T) {
	store := newMockClickStore()
	store.shouldFail = true
	pool := NewClickWorkerPool(store, Config{
		WorkerCount:  1,
		BufferSize:   10,
		BatchSize:    1,
		BatchTimeout: time.Hour,
	})
	pool.Start()
	defer pool.Shutdown(time.Second)

	require.NoError(t, pool.RecordClick(context.Background(), "boom"))
	require.NoError(t, pool.RecordClick(context.Background(), "boom"))

	assert.Eventually(t, func() bool {
		return store.calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestClickWorkerPool_RecordClickHonoursContext(t *testing.T) {
	pool := NewClickWorkerPool(newMockClickStore(), Config{WorkerCount: 1, BufferSize: 1})
	defer pool.Shutdown(time.Second)

	require.NoError(t, pool.RecordClick(context.Background(), "a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, pool.RecordClick(ctx, "b"), context.DeadlineExceeded)
}

func TestClickWorkerPool_Stats(t *testing.T) {
	pool := NewClickWorkerPool(newMockClickStore(), Config{
		WorkerCount:  3,
		BufferSize:   50,
		BatchSize:    10,
		BatchTimeout: time.Second,
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, pool.RecordClick(context.Background(), "x"))
	}

	stats := pool.Stats()
	assert.Equal(t, 3, stats.WorkerCount)
	assert.Equal(t, 50, stats.QueueCap)
	assert.Equal(t, 5, stats.QueueSize)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 2, config.WorkerCount)
	assert.Equal(t, 1024, config.BufferSize)
	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, time.Second, config.BatchTimeout)
}
