// Package worker batches click increments off the request path.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned by RecordClick after Shutdown.
var ErrPoolClosed = errors.New("click worker pool is closed")

// ClickStore receives aggregated increments.
type ClickStore interface {
	IncrementClicks(ctx context.Context, code string, delta int64) error
}

type Config struct {
	WorkerCount  int           // number of workers
	BufferSize   int           // queued clicks before RecordClick blocks
	BatchSize    int           // clicks per worker before a flush
	BatchTimeout time.Duration // max age of a pending batch
}

func DefaultConfig() Config {
	return Config{
		WorkerCount:  2,
		BufferSize:   1024,
		BatchSize:    100,
		BatchTimeout: time.Second,
	}
}

// ClickWorkerPool aggregates clicks per code and flushes them to the store.
type ClickWorkerPool struct {
	store        ClickStore
	clicks       chan string
	batchSize    int
	batchTimeout time.Duration
	workerCount  int
	closing      chan struct{}
	mu           sync.RWMutex
	closed       bool
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewClickWorkerPool(store ClickStore, config Config) *ClickWorkerPool {
	defaults := DefaultConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = defaults.BatchTimeout
	}

	return &ClickWorkerPool{
		store:        store,
		clicks:       make(chan string, config.BufferSize),
		batchSize:    config.BatchSize,
		batchTimeout: config.BatchTimeout,
		workerCount:  config.WorkerCount,
		closing:      make(chan struct{}),
	}
}

func (p *ClickWorkerPool) Start() {
	log.Info().
		Int("workers", p.workerCount).
		Int("batchSize", p.batchSize).
		Dur("batchTimeout", p.batchTimeout).
		Msg("Starting click worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *ClickWorkerPool) worker(id int) {
	defer p.wg.Done()

	pending := make(map[string]int64)
	total := 0

	// Stopped timers never deliver stale values (Go 1.23 timer semantics).
	timer := time.NewTimer(p.batchTimeout)
	timer.Stop()
	timerRunning := false

	flush := func() {
		if total == 0 {
			return
		}

		for code, n := range pending {
			if err := p.store.IncrementClicks(context.Background(), code, n); err != nil {
				log.Error().
					Err(err).
					Int("workerID", id).
					Str("code", code).
					Int64("clicks", n).
					Msg("Failed to record clicks")
			}
			delete(pending, code)
		}

		log.Debug().Int("workerID", id).Int("clicks", total).Msg("Flushed click batch")
		total = 0

		if timerRunning {
			timer.Stop()
		}
		timerRunning = false
	}

	for {
		select {
		case code, ok := <-p.clicks:
			if !ok {
				flush()
				return
			}

			pending[code]++
			total++

			if total >= p.batchSize {
				flush()
			} else if !timerRunning {
				timer.Reset(p.batchTimeout)
				timerRunning = true
			}

		case <-timer.C:
			timerRunning = false
			flush()
		}
	}
}

// RecordClick queues one click for code. It blocks while the queue is full
// until ctx is done.
func (p *ClickWorkerPool) RecordClick(ctx context.Context, code string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.clicks <- code:
		return nil
	default:
	}

	log.Warn().Str("code", code).Msg("Click queue is full, blocking")

	select {
	case p.clicks <- code:
		return nil
	case <-p.closing:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting clicks and waits up to timeout for pending batches
// to be flushed.
func (p *ClickWorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		log.Info().Msg("Shutting down click worker pool")

		close(p.closing)
		p.mu.Lock()
		p.closed = true
		close(p.clicks)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Info().Msg("Click worker pool shut down gracefully")
		case <-time.After(timeout):
			log.Warn().Msg("Click worker pool shutdown timeout")
			shutdownErr = context.DeadlineExceeded
		}
	})

	return shutdownErr
}

type PoolStats struct {
	QueueSize   int
	QueueCap    int
	WorkerCount int
}

func (p *ClickWorkerPool) Stats() PoolStats {
	return PoolStats{
		QueueSize:   len(p.clicks),
		QueueCap:    cap(p.clicks),
		WorkerCount: p.workerCount,
	}
}
