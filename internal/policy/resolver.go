package policy

import (
	"context"
	"errors"

	"github.com/diewo77/jobboard/gate"
	"github.com/diewo77/jobboard/internal/store"
)

// StoreResolver maps a user id to the profile of the user's current role.
// The role is read from the store, not from the token, so a role change
// or a deletion applies before the token expires.
type StoreResolver struct {
	users store.UserStore
}

func NewStoreResolver(users store.UserStore) *StoreResolver {
	return &StoreResolver{users: users}
}

// Resolve returns nil, nil when the user no longer exists.
func (r *StoreResolver) Resolve(ctx context.Context, userID string) (gate.Profile, error) {
	u, err := r.users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ProfileFor(u.Role), nil
}
