package gate_test

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/jobboard/gate"
)

type countingResolver struct {
	inner *gate.StaticResolver[string]
	calls int
}

func (c *countingResolver) Resolve(ctx context.Context, s string) (gate.Profile, error) {
	c.calls++
	return c.inner.Resolve(ctx, s)
}

func TestCachedResolver_CachesProfile(t *testing.T) {
	inner := gate.NewStaticResolver[string]()
	inner.Set("u1", gate.NewStaticProfile("seeker"))
	counting := &countingResolver{inner: inner}
	cached := gate.NewCachedResolver[string](counting, 5*time.Minute)

	p1, err := cached.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner.Set("u1", gate.NewStaticProfile("employer"))
	p2, _ := cached.Resolve(context.Background(), "u1")

	if p1.Name() != "seeker" || p2.Name() != "seeker" {
		t.Errorf("expected cached seeker, got %s / %s", p1.Name(), p2.Name())
	}
	if counting.calls != 1 {
		t.Errorf("inner called %d times, want 1", counting.calls)
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	inner := gate.NewStaticResolver[string]()
	inner.Set("u1", gate.NewStaticProfile("seeker"))
	cached := gate.NewCachedResolver[string](inner, 5*time.Minute)

	_, _ = cached.Resolve(context.Background(), "u1")
	inner.Set("u1", gate.NewStaticProfile("employer"))
	cached.Invalidate("u1")

	p, _ := cached.Resolve(context.Background(), "u1")
	if p.Name() != "employer" {
		t.Errorf("expected fresh employer profile, got %s", p.Name())
	}
}

func TestCachedResolver_ZeroTTLDisablesCache(t *testing.T) {
	inner := gate.NewStaticResolver[string]()
	inner.Set("u1", gate.NewStaticProfile("seeker"))
	counting := &countingResolver{inner: inner}
	cached := gate.NewCachedResolver[string](counting, 0)

	_, _ = cached.Resolve(context.Background(), "u1")
	_, _ = cached.Resolve(context.Background(), "u1")
	if counting.calls != 2 {
		t.Errorf("inner called %d times, want 2", counting.calls)
	}
}
