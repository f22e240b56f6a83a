package policy

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/diewo77/jobboard/auth"
	"github.com/diewo77/jobboard/gate"
	"github.com/diewo77/jobboard/httpx"
	"github.com/diewo77/jobboard/internal/store"
)

// AuthGate is the single authorization point of the API.
type AuthGate struct {
	Gate          *gate.Gate[string]
	CacheResolver *gate.CachedResolver[string]
}

// NewAuthGate builds the gate over the user store with profile caching and
// registers the job ownership policy (admins bypass it).
func NewAuthGate(users store.UserStore, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[string](NewStoreResolver(users), cacheTTL)
	ag := &AuthGate{
		Gate:          gate.New[string](cached),
		CacheResolver: cached,
	}
	ag.RegisterPolicy(ResourceJob, NewAdminBypassPolicy(NewOwnershipPolicy(), ag.IsAdmin))
	return ag
}

// RegisterPolicy adds a resource policy.
func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy[string]) {
	ag.Gate.Register(resourceType, p)
}

// Authorize checks the caller in ctx against action on resource.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthenticated
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// CanProfile checks only the role permission of the caller in ctx.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthenticated
	}
	return ag.Gate.CanProfile(ctx, userID, action, resourceType)
}

// IsAdmin reports whether userID currently holds the admin profile.
func (ag *AuthGate) IsAdmin(ctx context.Context, userID string) bool {
	profile, err := ag.Gate.Profile(ctx, userID)
	if err != nil {
		return false
	}
	return profile.HasPermission(gate.PermissionSuperAdmin)
}

// InvalidateUser drops the cached profile of userID. Call after a role
// change or deletion.
func (ag *AuthGate) InvalidateUser(userID string) {
	ag.CacheResolver.Invalidate(userID)
}

// RequirePermission answers 401 without a live caller and 403 when the
// caller's role lacks resourceType:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.allow(w, r, ag.CanProfile(r.Context(), action, resourceType)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets "*:*" profiles through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := ag.CanProfile(r.Context(), gate.ActionAll, gate.Wildcard)
			if !ag.allow(w, r, err) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser answers 401 unless the caller still exists.
func (ag *AuthGate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.Unauthorized(w, r)
			return
		}
		if _, err := ag.Gate.Profile(r.Context(), userID); !ag.allow(w, r, err) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (ag *AuthGate) allow(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, gate.ErrUnauthenticated):
		auth.Unauthorized(w, r)
	case errors.Is(err, gate.ErrForbidden):
		httpx.Fail(w, http.StatusForbidden, "forbidden", "Access denied", nil)
	default:
		log.Printf("[http] authorize %s %s: %v", r.Method, r.URL.Path, err)
		httpx.Fail(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
	}
	return false
}
