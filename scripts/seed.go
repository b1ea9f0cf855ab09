// Package scripts provides database seeding.
//
// Seeding works like migrations: executed seeds are tracked in a dedicated
// table so each seed runs exactly once, making it safe on both fresh and
// existing databases.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/models"
)

// Seeder populates reference data on the main cluster.
type Seeder struct {
	db *database.Pool
}

// NewSeeder creates a new seeder.
func NewSeeder(db *database.Pool) *Seeder {
	return &Seeder{db: db}
}

// SeedDatabase runs every seed that has not been executed yet.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executed, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	seeds := []struct {
		Name     string
		SeedFunc func(ctx context.Context, tx *sql.Tx) error
	}{
		{"shop_roles", s.seedShopRoles},
	}

	for _, seed := range seeds {
		if executed[seed.Name] {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
			continue
		}

		log.Info().Str("seed", seed.Name).Msg("Running seed")
		if err := s.runSeed(ctx, seed.Name, seed.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// createSeedsTable creates the tracking table if it doesn't exist.
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS seeds (
            name VARCHAR(255) NOT NULL PRIMARY KEY,
            executed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )
    `
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the names of seeds already applied.
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM seeds`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed function within a transaction and records it.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		query := `INSERT INTO seeds (name) VALUES (?)`
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedShopRoles inserts the base shop roles, skipping names that already
// exist so reruns on a pre-populated database stay safe.
func (s *Seeder) seedShopRoles(ctx context.Context, tx *sql.Tx) error {
	existing := make(map[string]bool)

	rows, err := tx.QueryContext(ctx, `SELECT sr_name FROM shop_roles`)
	if err != nil {
		return fmt.Errorf("failed to query existing shop roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan shop role name: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate shop role rows: %w", err)
	}

	inserted := 0
	for _, role := range models.DefaultShopRoles() {
		if existing[role.Name] {
			continue
		}

		query := `INSERT INTO shop_roles (sr_name, sr_discount_type_id, sr_discount) VALUES (?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query, role.Name, role.DiscountTypeID, role.Discount); err != nil {
			return fmt.Errorf("failed to insert shop role %s: %w", role.Name, err)
		}
		inserted++
	}

	log.Info().Int("inserted", inserted).Msg("Shop roles seeded")
	return nil
}
