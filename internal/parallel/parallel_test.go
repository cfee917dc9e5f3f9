package parallel

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap_Success(t *testing.T) {
	items := []int{1, 2, 3}
	results := Map(context.Background(), items, 4, func(_ context.Context, n int) (int, error) {
		return n * 10, nil
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.OK() {
			t.Errorf("item %d should be OK", i)
		}
		if r.Value != items[i]*10 {
			t.Errorf("item %d: expected %d, got %d", i, items[i]*10, r.Value)
		}
	}
}

func TestMap_WithErrors(t *testing.T) {
	items := []string{"ok", "fail"}
	results := Map(context.Background(), items, 4, func(_ context.Context, s string) (string, error) {
		if s == "fail" {
			return "", fmt.Errorf("simulated failure")
		}
		return s, nil
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Results should be in order
	if !results[0].OK() {
		t.Error("first item should be OK")
	}
	if results[1].OK() {
		t.Error("second item should have failed")
	}

	vals, errs := Values(results)
	if len(vals) != 1 || vals[0] != "ok" {
		t.Errorf("expected [ok], got %v", vals)
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %d", len(errs))
	}
}

func TestMap_Concurrency(t *testing.T) {
	var maxConcurrent int64
	var current int64

	items := make([]int, 10)
	results := Map(context.Background(), items, 2, func(context.Context, int) (struct{}, error) {
		c := atomic.AddInt64(&current, 1)
		// Track max concurrent
		for {
			old := atomic.LoadInt64(&maxConcurrent)
			if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return struct{}{}, nil
	})

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if maxConcurrent > 2 {
		t.Errorf("max concurrent should be <= 2, got %d", maxConcurrent)
	}
}

func TestMap_DefaultConcurrency(t *testing.T) {
	// Should not panic with 0 concurrency (defaults to 4)
	results := Map(context.Background(), []int{1}, 0, func(_ context.Context, n int) (int, error) { return n, nil })
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestMap_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	results := Map(ctx, []int{1, 2, 3}, 1, func(context.Context, int) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, nil
	})
	for i, r := range results {
		if r.OK() {
			t.Errorf("item %d should carry the context error", i)
		}
	}
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestMap_TimingTracked(t *testing.T) {
	results := Map(context.Background(), []int{1}, 1, func(context.Context, int) (int, error) {
		time.Sleep(50 * time.Millisecond)
		return 0, nil
	})
	if results[0].Elapsed < 50*time.Millisecond {
		t.Errorf("expected elapsed >= 50ms, got %v", results[0].Elapsed)
	}
}
