package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/jobboard/gate"
)

type ownedThing struct{ owner string }

func ownerPolicy() gate.Policy[string] {
	return gate.PolicyFunc[string](func(_ context.Context, subject string, _ gate.Action, resource any) bool {
		r, ok := resource.(*ownedThing)
		return ok && r.owner == subject
	})
}

func newTestGate() *gate.Gate[string] {
	resolver := gate.NewStaticResolver[string]()
	resolver.Set("emp", gate.NewStaticProfile("employer",
		gate.NewPermission("job", gate.ActionCreate),
		gate.NewPermission("job", gate.ActionUpdate),
	))
	resolver.Set("root", gate.NewStaticProfile("admin", gate.PermissionSuperAdmin))
	g := gate.New[string](resolver)
	g.Register("job", ownerPolicy())
	return g
}

func TestGate_ProfileOnly(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Authorize(ctx, "emp", gate.ActionCreate, "job", nil); err != nil {
		t.Errorf("employer should create jobs: %v", err)
	}
	if err := g.Authorize(ctx, "emp", gate.ActionDelete, "job", nil); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGate_UnknownSubject(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Authorize(ctx, "", gate.ActionCreate, "job", nil); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("zero subject: expected ErrUnauthenticated, got %v", err)
	}
	if err := g.Authorize(ctx, "ghost", gate.ActionCreate, "job", nil); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("unresolved subject: expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_ResourcePolicy(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	mine := &ownedThing{owner: "emp"}
	theirs := &ownedThing{owner: "someone-else"}

	if !g.Can(ctx, "emp", gate.ActionUpdate, "job", mine) {
		t.Error("owner should update own job")
	}
	if err := g.Authorize(ctx, "emp", gate.ActionUpdate, "job", theirs); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("non-owner: expected ErrForbidden, got %v", err)
	}
}

func TestGate_CanProfile(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()
	if err := g.CanProfile(ctx, "root", gate.ActionList, "admin"); err != nil {
		t.Errorf("superadmin should pass: %v", err)
	}
	if err := g.CanProfile(ctx, "emp", gate.ActionList, "admin"); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (gate.Profile, error) {
	return nil, errors.New("db down")
}

func TestGate_ResolverError(t *testing.T) {
	g := gate.New[string](failingResolver{})
	err := g.Authorize(context.Background(), "emp", gate.ActionView, "job", nil)
	if err == nil || errors.Is(err, gate.ErrForbidden) || errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("resolver failures should surface as plain errors, got %v", err)
	}
}
