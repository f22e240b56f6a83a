package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/diewo77/jobboard/auth"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
)

// SeedAdmin makes sure an admin account exists for email. Registration can
// never grant the admin role, so this is how the first admin is created.
// Running it again is a no-op; an existing non-admin account is promoted.
func SeedAdmin(ctx context.Context, users store.UserStore, email, password string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	existing, err := users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		log.Printf("[seed] promoting %s to admin", email)
		return users.SetRole(ctx, existing.ID, models.RoleAdmin)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("seed admin: %w", err)
	}

	if len(password) < 6 {
		return errors.New("seed admin: password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	u := &models.User{Name: "Administrator", Email: email, Password: hash, Role: models.RoleAdmin}
	if err := users.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("[seed] created admin %s", email)
	return nil
}
