// Package migrations manages the database schema.
//
// Migrations are tracked in a dedicated migrations table and are idempotent:
// a table that already exists is recorded as migrated without re-running its
// SQL, so the set is safe to run on both fresh and existing databases. The
// main cluster and the logging cluster carry separate migration sets.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/database"
)

// Migration represents a single schema change. Each migration creates one
// table and runs exactly once per database.
type Migration struct {
	Name        string
	Description string
	TableName   string
	RunSQL      func(ctx context.Context, tx *sql.Tx) error
}

// Migrator runs a migration set against one pool.
type Migrator struct {
	db         *database.Pool
	migrations []Migration
}

// NewMigrator creates a migrator for the given pool and migration set.
func NewMigrator(db *database.Pool, migrations []Migration) *Migrator {
	return &Migrator{
		db:         db,
		migrations: migrations,
	}
}

// RunMigrations creates the tracking table if needed and applies every
// migration that has not been executed yet.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Info().Msg("Running database migrations")
	startTime := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	migrationsRun := 0
	for _, migration := range m.migrations {
		if executed[migration.Name] {
			continue
		}

		exists, err := m.tableExists(ctx, migration.TableName)
		if err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", migration.TableName, err)
		}

		if exists {
			log.Info().
				Str("migration", migration.Name).
				Str("table", migration.TableName).
				Msg("Table already exists, recording migration as completed")

			if err := m.recordMigration(ctx, migration.Name, migration.Description); err != nil {
				return fmt.Errorf("failed to record existing migration: %w", err)
			}
			continue
		}

		log.Info().
			Str("migration", migration.Name).
			Str("table", migration.TableName).
			Msg("Running migration")

		if err := m.runMigration(ctx, migration); err != nil {
			return err
		}
		migrationsRun++
	}

	log.Info().
		Int("migrations_run", migrationsRun).
		Int("total_migrations", len(m.migrations)).
		Dur("duration", time.Since(startTime)).
		Msg("Database migrations completed")

	return nil
}

// createMigrationsTable creates the tracking table if it doesn't exist.
func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS migrations (
            name VARCHAR(255) NOT NULL PRIMARY KEY,
            description TEXT,
            executed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )
    `
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// getExecutedMigrations returns the names of migrations already applied.
func (m *Migrator) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name FROM migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executed := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		executed[name] = true
	}

	return executed, rows.Err()
}

// runMigration runs one migration inside a transaction so a failed DDL
// statement never leaves a half-recorded migration behind.
func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := migration.RunSQL(ctx, tx); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}

		query := `INSERT INTO migrations (name, description) VALUES (?, ?)`
		if _, err := tx.ExecContext(ctx, query, migration.Name, migration.Description); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}

// recordMigration marks a migration as completed without running its SQL.
func (m *Migrator) recordMigration(ctx context.Context, name, description string) error {
	query := `INSERT INTO migrations (name, description) VALUES (?, ?)`
	if _, err := m.db.ExecContext(ctx, query, name, description); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// tableExists checks whether a table exists in the current schema.
func (m *Migrator) tableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1
            FROM information_schema.tables
            WHERE table_schema = DATABASE()
            AND table_name = ?
        )
    `
	var exists bool
	err := m.db.QueryRowContext(ctx, query, tableName).Scan(&exists)
	return exists, err
}

// GetMigrations returns the migration set for the main cluster. Order
// matters: referenced tables must exist before their foreign keys.
func GetMigrations() []Migration {
	return []Migration{
		createUsersTable(),
		createShopsTable(),
		createShopRolesTable(),
		createUserShopsTable(),
		createCustomersTable(),
		createCategoriesTable(),
		createProductsTable(),
		createOrdersTable(),
	}
}

// GetLogMigrations returns the migration set for the logging cluster.
func GetLogMigrations() []Migration {
	return []Migration{
		createLoginLogsTable(),
	}
}
