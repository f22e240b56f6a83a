// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/diewo77/jobboard/internal/db"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store/gormstore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewStore returns a migrated in-memory SQLite store private to t.
func NewStore(t *testing.T) *gormstore.Store {
	t.Helper()
	dsn := "file:" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Options(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := gormstore.New(gdb)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// User inserts a user with a throwaway password hash.
func User(t *testing.T, s *gormstore.Store, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "hash",
		Role:     role,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// Job inserts an open Full-Time job owned by owner.
func Job(t *testing.T, s *gormstore.Store, owner *models.User, title string) *models.Job {
	t.Helper()
	j := &models.Job{
		Title:       title,
		Company:     "Acme",
		Location:    "Remote",
		Description: "Build things",
		CreatedBy:   owner.ID,
	}
	if err := s.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("create job %s: %v", title, err)
	}
	return j
}
