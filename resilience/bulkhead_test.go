package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewBulkhead_Defaults(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})

	if b.config.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", b.config.MaxConcurrent)
	}
}

func TestBulkhead_FailsFastWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}

	if err := b.Acquire(context.Background()); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("third Acquire() error = %v, want ErrBulkheadFull", err)
	}

	b.Release()
	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() after Release() error = %v", err)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()

	start := time.Now()
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("waiting Acquire() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("waiting Acquire() returned in %v, expected to wait for the release", elapsed)
	}
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		MaxWait:       20 * time.Millisecond,
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := b.Acquire(context.Background()); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want ErrBulkheadFull after MaxWait", err)
	}
}

func TestBulkhead_AcquireHonorsContext(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}

func TestBulkhead_ExecuteLimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})

	var inFlight, peak int32
	var wg sync.WaitGroup
	var rejected int64

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			if errors.Is(err, ErrBulkheadFull) {
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
	if rejected == 0 {
		t.Error("expected some calls rejected with ErrBulkheadFull")
	}
}

func TestBulkhead_ExecutePropagatesError(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})

	opErr := errors.New("backend down")
	if err := b.Execute(context.Background(), func(ctx context.Context) error {
		return opErr
	}); !errors.Is(err, opErr) {
		t.Errorf("Execute() error = %v, want the operation error", err)
	}

	// The slot must be released even on error.
	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() after failed Execute() error = %v", err)
	}
}

func TestBulkhead_Metrics(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 3})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	b.Release()

	m := b.Metrics()
	if m.Active != 1 {
		t.Errorf("Active = %d, want 1", m.Active)
	}
	if m.MaxActive != 2 {
		t.Errorf("MaxActive = %d, want 2", m.MaxActive)
	}
	if m.Available != 2 {
		t.Errorf("Available = %d, want 2", m.Available)
	}
	if m.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", m.MaxConcurrent)
	}
}

func TestBulkhead_MetricsCountsRejections(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	_ = b.Acquire(context.Background())
	_ = b.Acquire(context.Background())

	if m := b.Metrics(); m.Rejected != 2 {
		t.Errorf("Rejected = %d, want 2", m.Rejected)
	}
}
