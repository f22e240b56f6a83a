// Package services holds the job board's use cases. Handlers decode the
// request, call a service and render what it returns; services talk to the
// store, the gate and the event queue and speak apperr.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/jobboard/gate"
	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/store"
)

// Events queues notifications without blocking. notify.Dispatcher
// implements it.
type Events interface {
	Enqueue(key string, payload any) bool
}

// Authorizer checks the caller in ctx against a resource.
// policy.AuthGate implements it.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
}

// Invalidator forgets cached permissions of a user.
type Invalidator interface {
	InvalidateUser(userID string)
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

type noEvents struct{}

func (noEvents) Enqueue(string, any) bool { return false }

type noInvalidation struct{}

func (noInvalidation) InvalidateUser(string) {}

// authzErr maps gate errors to apperr.
func authzErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return apperr.Unauthenticated("Invalid token")
	case errors.Is(err, gate.ErrForbidden):
		return apperr.Forbidden("Access denied")
	}
	return apperr.Internal("authorization failed", err)
}

// storeErr maps store.ErrNotFound to a 404 carrying msg. Anything else is
// internal.
func storeErr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal("store failure", err)
}
