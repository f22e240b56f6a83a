// Package db opens the SQL database behind the gorm store and keeps its
// schema current.
package db

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/diewo77/jobboard/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var passwordRe = regexp.MustCompile(`(password=)(\S+)`)

// Options returns the gorm configuration shared by every SQL connection.
// Timestamps are always written in UTC so that SQLite, which stores them
// as text, compares them in the same order as PostgreSQL.
func Options(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		// Jobs outlive their creator, so no FK from jobs.created_by.
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// Open connects to the configured SQL database, retrying PostgreSQL while
// the server comes up, and brings the schema up to date.
func Open(cfg config.DatabaseConfig, useMigrations bool) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		gdb, err = gorm.Open(sqlite.Open(cfg.SQLitePath), Options(cfg.Debug))
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Printf("[db] using sqlite %s", cfg.SQLitePath)
	case config.DriverPostgres:
		gdb, err = openPostgres(cfg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("db: driver %q is not a SQL driver", cfg.Driver)
	}

	if cfg.Driver == config.DriverPostgres && useMigrations {
		if err := MigrateSQL(cfg.URL()); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(gdb); err != nil {
		return nil, err
	}
	if err := checkTables(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func openPostgres(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := cfg.DSN()
	retries := max(cfg.MaxRetries, 1)
	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < retries; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), Options(cfg.Debug))
		if err == nil {
			break
		}
		log.Printf("[db] retrying connection (%d/%d): %v", i+1, retries, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := gdb.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Printf("[db] using DSN: %s", MaskDSN(dsn))
	return gdb, nil
}

// MaskDSN hides the password of a key=value DSN.
func MaskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}

func checkTables(gdb *gorm.DB) error {
	for _, table := range []string{"users", "jobs", "job_applicants", "saved_jobs"} {
		if !gdb.Migrator().HasTable(table) {
			return fmt.Errorf("missing table after migration: %s", table)
		}
	}
	return nil
}
