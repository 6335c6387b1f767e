// Package db applies the embedded schema migrations using goose.
//
// Migration files live in internal/db/migrations/ and are embedded via //go:embed.
// The serve command applies pending migrations on startup; the migrate command
// can apply them or report their state without starting the server.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/dbpool"
)

// MigrationState describes one migration file and whether it has been applied.
type MigrationState struct {
	Version   int64     `json:"version" yaml:"version"`
	File      string    `json:"file" yaml:"file"`
	Applied   bool      `json:"applied" yaml:"applied"`
	AppliedAt time.Time `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
}

// withProvider opens a database/sql handle over the pool's connection string
// (goose requires *sql.DB) and runs fn with a goose provider.
func withProvider(pool *dbpool.Pool, fsys fs.FS, fn func(*goose.Provider) error) error {
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	return fn(provider)
}

// RunMigrations applies all pending migrations from the provided filesystem.
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger, fsys fs.FS) error {
	return withProvider(pool, fsys, func(provider *goose.Provider) error {
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}

		for _, r := range results {
			if r.Error != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
			}

			log.WithFields(logrus.Fields{
				"version":  r.Source.Version,
				"file":     r.Source.Path,
				"duration": r.Duration,
			}).Info("migration applied")
		}

		if len(results) == 0 {
			log.Debug("all migrations already applied")
		}

		return nil
	})
}

// Status reports every known migration and whether it is applied.
func Status(ctx context.Context, pool *dbpool.Pool, fsys fs.FS) ([]MigrationState, error) {
	var states []MigrationState

	err := withProvider(pool, fsys, func(provider *goose.Provider) error {
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}

		for _, s := range statuses {
			states = append(states, MigrationState{
				Version:   s.Source.Version,
				File:      s.Source.Path,
				Applied:   s.State == goose.StateApplied,
				AppliedAt: s.AppliedAt,
			})
		}

		return nil
	})

	return states, err
}

// HasPending reports whether any embedded migration has not been applied yet.
func HasPending(ctx context.Context, pool *dbpool.Pool, fsys fs.FS) (bool, error) {
	var pending bool

	err := withProvider(pool, fsys, func(provider *goose.Provider) error {
		var err error

		pending, err = provider.HasPending(ctx)
		if err != nil {
			return fmt.Errorf("checking pending migrations: %w", err)
		}

		return nil
	})

	return pending, err
}
