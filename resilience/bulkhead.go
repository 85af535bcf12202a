package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of in-flight operations.
	// Default: 10
	MaxConcurrent int

	// MaxWait is how long to wait for a slot.
	// Default: 0 (fail immediately when full)
	MaxWait time.Duration
}

// Bulkhead limits concurrent calls against one remote endpoint, keeping a
// slow backend from absorbing every caller in the process. Slots are held
// in a weighted semaphore from golang.org/x/sync.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewBulkhead creates a bulkhead, applying defaults for zero fields.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire takes a slot, waiting up to MaxWait when the bulkhead is full.
// A full bulkhead returns ErrBulkheadFull; a cancelled ctx returns its
// error. Every successful Acquire must be paired with Release.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		b.noteAcquired()
		return nil
	}

	if b.config.MaxWait <= 0 {
		b.noteRejected()
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
	defer cancel()

	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.noteRejected()
		return ErrBulkheadFull
	}

	b.noteAcquired()
	return nil
}

// Release returns a slot taken by a successful Acquire.
func (b *Bulkhead) Release() {
	b.sem.Release(1)

	b.mu.Lock()
	b.active--
	b.mu.Unlock()
}

// Execute runs op inside a bulkhead slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Metrics returns a snapshot of bulkhead occupancy.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected,
	}
}

// BulkheadMetrics is a point-in-time view of bulkhead occupancy.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

func (b *Bulkhead) noteAcquired() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

func (b *Bulkhead) noteRejected() {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
}
