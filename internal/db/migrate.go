package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/jobboard/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers postgres:// for migrate
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table the gorm store owns, in dependency order.
func Models() []any {
	return []any{&models.User{}, &models.Job{}, &models.Applicant{}, &models.SavedJob{}}
}

// AutoMigrate creates or updates the tables from the model definitions.
// Used for SQLite and for PostgreSQL when SQL migrations are disabled.
func AutoMigrate(gdb *gorm.DB) error {
	for _, m := range Models() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL applies the embedded PostgreSQL migrations to url.
func MigrateSQL(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
