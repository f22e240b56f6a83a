package policy

import (
	"context"

	"github.com/diewo77/jobboard/gate"
)

// Ownable is implemented by resources that belong to a user.
type Ownable interface {
	GetOwnerID() string
}

// OwnershipPolicy allows an action when the caller owns the resource.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can allows list/create (nil resource) and denies resources that are not
// Ownable.
func (p *OwnershipPolicy) Can(_ context.Context, userID string, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetOwnerID() == userID
}

// AdminBypassPolicy lets admins through and defers to inner otherwise.
type AdminBypassPolicy struct {
	inner   gate.Policy[string]
	isAdmin func(ctx context.Context, userID string) bool
}

func NewAdminBypassPolicy(inner gate.Policy[string], isAdmin func(ctx context.Context, userID string) bool) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner, isAdmin: isAdmin}
}

func (p *AdminBypassPolicy) Can(ctx context.Context, userID string, action gate.Action, resource any) bool {
	if p.isAdmin(ctx, userID) {
		return true
	}
	return p.inner.Can(ctx, userID, action, resource)
}
