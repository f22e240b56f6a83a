// Package gate is a small authorization engine. A Gate combines two checks:
// the subject's profile must grant "resource:action", and when a resource
// instance is given, the policy registered for that resource type must
// allow it (ownership rules live there).
//
// The subject type is generic; the job board uses string user ids.
package gate

import (
	"context"
	"fmt"
)

// Gate is the central authorization checkpoint.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate resolving subjects with resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register sets the resource policy for resourceType, replacing any previous one.
// Register is not safe for use once the gate serves requests.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Profile resolves the subject's profile.
// ErrUnauthenticated is returned for a zero subject or one that no longer exists.
func (g *Gate[U]) Profile(ctx context.Context, subject U) (Profile, error) {
	var zero U
	if subject == zero {
		return nil, ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	if profile == nil {
		return nil, ErrUnauthenticated
	}
	return profile, nil
}

// Authorize returns nil when subject may perform action on resource.
// Denials are ErrForbidden; unknown subjects are ErrUnauthenticated.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string, resource any) error {
	profile, err := g.Profile(ctx, subject)
	if err != nil {
		return err
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, subject, action, resource) {
			return ErrForbidden
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, subject, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, without resource policies.
func (g *Gate[U]) CanProfile(ctx context.Context, subject U, action Action, resourceType string) error {
	profile, err := g.Profile(ctx, subject)
	if err != nil {
		return err
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}
