// Package db provides PostgreSQL access for job openings and candidates.
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate creates the jobs and candidates tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	// No arguments: pgx uses the simple protocol, which accepts multiple statements.
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SeedJobs inserts the sample openings when the jobs table is empty.
// Returns the number of rows inserted.
func (db *DB) SeedJobs(ctx context.Context) (int, error) {
	inserted := 0
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		count, err := countJobs(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, job := range SampleJobs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO jobs (title, department, location, type, description)
				 VALUES ($1, $2, $3, $4, $5)`,
				job.Title, job.Department, job.Location, job.Type, job.Description,
			); err != nil {
				return fmt.Errorf("failed to seed job %q: %w", job.Title, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
