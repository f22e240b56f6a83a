package db_test

import (
	"context"
	"testing"

	"github.com/diewo77/jobboard/internal/db"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store/gormstore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newStore(t *testing.T) *gormstore.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), db.Options(false))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatal(err)
	}
	s := gormstore.New(gdb)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSeedAdminIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := db.SeedAdmin(ctx, s, "Admin@Example.com", "changeme"); err != nil {
		t.Fatal(err)
	}
	if err := db.SeedAdmin(ctx, s, "admin@example.com", "changeme"); err != nil {
		t.Fatal(err)
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly one admin, got %d users", len(users))
	}
	if users[0].Role != models.RoleAdmin || users[0].Email != "admin@example.com" {
		t.Fatalf("unexpected seeded user %+v", users[0])
	}
}

func TestSeedAdminPromotesExisting(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := &models.User{Name: "Ops", Email: "ops@example.com", Password: "x", Role: models.RoleSeeker}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := db.SeedAdmin(ctx, s, "ops@example.com", ""); err != nil {
		t.Fatal(err)
	}
	got, _ := s.UserByID(ctx, u.ID)
	if got.Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", got.Role)
	}
}

func TestSeedAdminSkipsWithoutEmail(t *testing.T) {
	s := newStore(t)
	if err := db.SeedAdmin(context.Background(), s, "", "whatever"); err != nil {
		t.Fatal(err)
	}
	if err := db.SeedAdmin(context.Background(), s, "a@b.co", "123"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestMaskDSN(t *testing.T) {
	got := db.MaskDSN("host=h user=u password=s3cret dbname=n")
	if got != "host=h user=u password=*** dbname=n" {
		t.Fatalf("MaskDSN = %q", got)
	}
}

func TestModelsHaveTables(t *testing.T) {
	s := newStore(t)
	for _, table := range []string{"users", "jobs", "job_applicants", "saved_jobs"} {
		if !s.DB().Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
}
