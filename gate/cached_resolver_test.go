package gate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-bookstore/gate"
)

type countingResolver struct {
	mu      sync.Mutex
	calls   int
	profile gate.Profile
}

func (r *countingResolver) Resolve(context.Context, string) (gate.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.profile, nil
}

func (r *countingResolver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestCachedResolver_HitsCache(t *testing.T) {
	inner := &countingResolver{profile: gate.NewStaticProfile(1, "clerk")}
	c := gate.NewCachedResolver[string](inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := c.Resolve(ctx, "u1")
		if err != nil || p == nil || p.Name() != "clerk" {
			t.Fatalf("Resolve() = %v, %v", p, err)
		}
	}
	if inner.count() != 1 {
		t.Errorf("inner called %d times, want 1", inner.count())
	}
}

func TestCachedResolver_CachesMisses(t *testing.T) {
	inner := &countingResolver{}
	c := gate.NewCachedResolver[string](inner, time.Minute)

	c.Resolve(context.Background(), "customer")
	c.Resolve(context.Background(), "customer")
	if inner.count() != 1 {
		t.Errorf("inner called %d times, want 1", inner.count())
	}
}

func TestCachedResolver_Expiry(t *testing.T) {
	inner := &countingResolver{profile: gate.NewStaticProfile(1, "clerk")}
	c := gate.NewCachedResolver[string](inner, time.Millisecond)

	c.Resolve(context.Background(), "u1")
	time.Sleep(5 * time.Millisecond)
	c.Resolve(context.Background(), "u1")
	if inner.count() != 2 {
		t.Errorf("inner called %d times, want 2", inner.count())
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	inner := &countingResolver{profile: gate.NewStaticProfile(1, "clerk")}
	c := gate.NewCachedResolver[string](inner, time.Minute)
	ctx := context.Background()

	c.Resolve(ctx, "u1")
	c.Resolve(ctx, "u2")
	c.Invalidate("u1")
	c.Resolve(ctx, "u1")
	c.Resolve(ctx, "u2")
	if inner.count() != 3 {
		t.Errorf("after Invalidate: %d calls, want 3", inner.count())
	}

	c.InvalidateAll()
	c.Resolve(ctx, "u1")
	c.Resolve(ctx, "u2")
	if inner.count() != 5 {
		t.Errorf("after InvalidateAll: %d calls, want 5", inner.count())
	}
}

func TestCachedResolver_Concurrent(t *testing.T) {
	inner := &countingResolver{profile: gate.NewStaticProfile(1, "manager")}
	c := gate.NewCachedResolver[string](inner, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resolve(context.Background(), "u1"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if inner.count() < 1 {
		t.Error("inner never called")
	}
}
