package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/jobboard/httpx"
	"github.com/diewo77/jobboard/internal/models"
)

type ctxKey string

const (
	principalCtxKey = ctxKey("principal")
	tokenErrCtxKey  = ctxKey("tokenError")
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID   string
	Role models.Role
}

// WithPrincipal stores the caller in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext extracts the caller.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok || p.ID == "" {
		return Principal{}, false
	}
	return p, true
}

// UserIDFromContext extracts the caller's user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.ID, ok
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Middleware attaches the caller to the request context when a valid bearer
// token is present. Public routes keep working without one; RequireAuth
// rejects the request later if the route needs a caller.
func Middleware(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := issuer.Parse(tok)
			if err != nil {
				r = r.WithContext(context.WithValue(r.Context(), tokenErrCtxKey, err))
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithPrincipal(r.Context(), Principal{ID: claims.Sub, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 JSON when no valid token was presented.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			Unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Unauthorized writes the 401 body, telling a missing token from a bad one.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	msg := "No token provided"
	if r.Context().Value(tokenErrCtxKey) != nil {
		msg = "Invalid token"
	}
	httpx.Fail(w, http.StatusUnauthorized, "unauthorized", msg, nil)
}
