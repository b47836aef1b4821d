package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/careers-board/internal/types"
)

const jobColumns = `id, title, department, location, type, description, created_at`

// CreateJob inserts a job and returns the stored row
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*Job, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var j Job
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, department, location, type, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+jobColumns,
		input.Title, input.Department, input.Location, input.Type, input.Description,
	).Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Type, &j.Description, &j.CreatedAt)
	if err != nil {
		return nil, &types.PersistenceError{Op: "insert job", Cause: err}
	}
	return &j, nil
}

// GetJob retrieves a job by ID. Returns nil, nil when it does not exist.
func (db *DB) GetJob(ctx context.Context, id int64) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Type, &j.Description, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &types.PersistenceError{Op: "get job", Cause: err}
	}
	return &j, nil
}

// ListJobs returns every job, newest first
func (db *DB) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list jobs", Cause: err}
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Type, &j.Description, &j.CreatedAt); err != nil {
			return nil, &types.PersistenceError{Op: "scan job", Cause: err}
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "list jobs", Cause: err}
	}
	return jobs, nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CountJobs returns the number of stored jobs
func (db *DB) CountJobs(ctx context.Context) (int, error) {
	return countJobs(ctx, db.pool)
}

func countJobs(ctx context.Context, q rowQuerier) (int, error) {
	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, &types.PersistenceError{Op: "count jobs", Cause: err}
	}
	return n, nil
}
