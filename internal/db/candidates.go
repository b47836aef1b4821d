package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/careers-board/internal/types"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for a broken REFERENCES constraint.
const foreignKeyViolation = "23503"

// CreateCandidate inserts a candidate. A job_id that does not reference an
// existing job is reported as a validation error.
func (db *DB) CreateCandidate(ctx context.Context, input *CandidateCreateInput) (*Candidate, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var c Candidate
	err := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (job_id, name, email, resume_path)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, job_id, name, email, resume_path, status, created_at`,
		input.JobID, input.Name, input.Email, input.ResumePath,
	).Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.ResumePath, &c.Status, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, &types.ValidationError{Field: "job_id", Message: "Job not found"}
		}
		return nil, &types.PersistenceError{Op: "insert candidate", Cause: err}
	}
	return &c, nil
}

// ListCandidates returns every candidate with its job title, newest first
func (db *DB) ListCandidates(ctx context.Context) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT c.id, c.job_id, c.name, c.email, c.resume_path, c.status, c.created_at, j.title
		 FROM candidates c
		 JOIN jobs j ON c.job_id = j.id
		 ORDER BY c.created_at DESC, c.id DESC`,
	)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list candidates", Cause: err}
	}
	defer rows.Close()

	candidates := []Candidate{}
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.ResumePath, &c.Status, &c.CreatedAt, &c.JobTitle); err != nil {
			return nil, &types.PersistenceError{Op: "scan candidate", Cause: err}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "list candidates", Cause: err}
	}
	return candidates, nil
}

// ListCandidatesForJob returns the candidates of one job, newest first
func (db *DB) ListCandidatesForJob(ctx context.Context, jobID int64) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, name, email, resume_path, status, created_at
		 FROM candidates
		 WHERE job_id = $1
		 ORDER BY created_at DESC, id DESC`,
		jobID,
	)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list candidates for job", Cause: err}
	}
	defer rows.Close()

	candidates := []Candidate{}
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.ResumePath, &c.Status, &c.CreatedAt); err != nil {
			return nil, &types.PersistenceError{Op: "scan candidate", Cause: err}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "list candidates for job", Cause: err}
	}
	return candidates, nil
}

// ReferencedResumePaths reports which of keys are referenced by a candidate.
func (db *DB) ReferencedResumePaths(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT resume_path FROM candidates WHERE resume_path = ANY($1)`,
		keys,
	)
	if err != nil {
		return nil, &types.PersistenceError{Op: "lookup resume paths", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &types.PersistenceError{Op: "scan resume path", Cause: err}
		}
		found[p] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "lookup resume paths", Cause: err}
	}
	return found, nil
}
