// Package database manages the MySQL connection pools.
//
// The service talks to four pools: the main read/write pair and the logging
// read/write pair. Handlers never touch a pool directly; repositories borrow
// one for the duration of a single query.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/config"
	"github.com/apsx/clinic-api/internal/constants"
)

// Pool represents a single database connection pool.
type Pool struct {
	*sql.DB
}

// Pools holds the four connection pools the application uses. Reads go to
// the replicas, writes to the mains; login/audit events go to the logging
// cluster.
type Pools struct {
	Main       *Pool
	Replica    *Pool
	Log        *Pool
	LogReplica *Pool
}

// Connect establishes all four connection pools and verifies each with a
// ping. Any failure closes the pools already opened.
func Connect(cfg *config.AppConfig) (*Pools, error) {
	pools := &Pools{}

	specs := []struct {
		name     string
		settings *config.DatabaseSettings
		target   **Pool
	}{
		{"main", &cfg.Databases.Main, &pools.Main},
		{"replica", &cfg.Databases.Replica, &pools.Replica},
		{"log", &cfg.Databases.Log, &pools.Log},
		{"log_replica", &cfg.Databases.LogReplica, &pools.LogReplica},
	}

	for _, spec := range specs {
		pool, err := connectPool(spec.name, spec.settings)
		if err != nil {
			pools.Close()
			return nil, fmt.Errorf("failed to connect %s pool: %w", spec.name, err)
		}
		*spec.target = pool
	}

	log.Info().Msg("All database pools connected")
	return pools, nil
}

// connectPool opens and verifies a single pool.
func connectPool(name string, settings *config.DatabaseSettings) (*Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultDBConnectTimeout)
	defer cancel()

	log.Info().
		Str("pool", name).
		Str("host", settings.Host).
		Int("port", settings.Port).
		Str("database", settings.Name).
		Msg("Connecting to database")

	db, err := sql.Open("mysql", settings.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(settings.MaxConns)
	db.SetMaxIdleConns(settings.MinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{DB: db}, nil
}

// Close closes all pools that were opened.
func (p *Pools) Close() {
	for _, pool := range []*Pool{p.Main, p.Replica, p.Log, p.LogReplica} {
		if pool != nil {
			pool.Close()
		}
	}
}

// Close closes a single connection pool.
func (p *Pool) Close() {
	if p != nil && p.DB != nil {
		p.DB.Close()
	}
}

// Transaction executes a function within a transaction.
func (p *Pool) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Roll back on panic before re-raising it.
	defer func() {
		if r := recover(); r != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck performs a health check on a single pool.
func (p *Pool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := p.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("database returned unexpected result: %d", result)
	}

	return nil
}

// HealthCheck verifies every pool in the cluster.
func (p *Pools) HealthCheck(ctx context.Context) error {
	checks := []struct {
		name string
		pool *Pool
	}{
		{"main", p.Main},
		{"replica", p.Replica},
		{"log", p.Log},
		{"log_replica", p.LogReplica},
	}

	for _, check := range checks {
		if check.pool == nil {
			return fmt.Errorf("%s pool not initialized", check.name)
		}
		if err := check.pool.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s pool: %w", check.name, err)
		}
	}

	return nil
}
