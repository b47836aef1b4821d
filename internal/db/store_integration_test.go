//go:build integration

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careers-board/internal/types"
)

// getTestDB connects to TEST_DATABASE_URL, applies the schema and empties both tables.
func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	_, _ = db.pool.Exec(ctx, "TRUNCATE candidates, jobs RESTART IDENTITY CASCADE")

	return db
}

func createTestJob(t *testing.T, db *DB, title string) *Job {
	t.Helper()
	job, err := db.CreateJob(context.Background(), &JobCreateInput{
		Title: title, Department: "Eng", Location: "Remote", Type: "Full-time", Description: "desc",
	})
	require.NoError(t, err)
	return job
}

func TestIntegration_CreateAndGetJob(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	job, err := db.CreateJob(ctx, &JobCreateInput{
		Title: "Backend Engineer", Department: "Eng", Location: "Remote", Type: "Full-time", Description: "desc",
	})
	require.NoError(t, err)
	require.NotZero(t, job.ID)

	got, err := db.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Backend Engineer", got.Title)
	assert.Equal(t, "Eng", got.Department)
	assert.Equal(t, "Remote", got.Location)
	assert.Equal(t, "Full-time", got.Type)
	assert.Equal(t, "desc", got.Description)

	again, err := db.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again, "reads must not mutate the row")
}

func TestIntegration_GetJob_NotFound(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	got, err := db.GetJob(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntegration_CreateJob_EmptyDescriptionDefaults(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	job, err := db.CreateJob(context.Background(), &JobCreateInput{
		Title: "UX Designer", Department: "Design", Location: "SF", Type: "Contract",
	})
	require.NoError(t, err)
	assert.Equal(t, "", job.Description)
}

func TestIntegration_ListJobs_NewestFirst(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		createTestJob(t, db, fmt.Sprintf("Job %d", i))
	}

	jobs, err := db.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 4)
	assert.Equal(t, "Job 3", jobs[0].Title)
	for i := 1; i < len(jobs); i++ {
		assert.False(t, jobs[i].CreatedAt.After(jobs[i-1].CreatedAt), "created_at must be non-increasing")
		if jobs[i].CreatedAt.Equal(jobs[i-1].CreatedAt) {
			assert.Less(t, jobs[i].ID, jobs[i-1].ID, "ties are broken by insertion order")
		}
	}

	n, err := db.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestIntegration_Candidates(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	backend := createTestJob(t, db, "Backend Engineer")
	other := createTestJob(t, db, "Product Manager")

	first, err := db.CreateCandidate(ctx, &CandidateCreateInput{
		JobID: backend.ID, Name: "Ada Lovelace", Email: "ada@example.com", ResumePath: "resume-1-1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, first.Status)

	second, err := db.CreateCandidate(ctx, &CandidateCreateInput{
		JobID: other.ID, Name: "Grace Hopper", Email: "grace@example.com", ResumePath: "resume-1-2.pdf",
	})
	require.NoError(t, err)

	t.Run("list joins job title", func(t *testing.T) {
		all, err := db.ListCandidates(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID)
		assert.Equal(t, "Product Manager", all[0].JobTitle)
		assert.Equal(t, "Backend Engineer", all[1].JobTitle)
	})

	t.Run("list for job", func(t *testing.T) {
		forJob, err := db.ListCandidatesForJob(ctx, backend.ID)
		require.NoError(t, err)
		require.Len(t, forJob, 1)
		assert.Equal(t, first.ID, forJob[0].ID)
		assert.Equal(t, "resume-1-1.pdf", forJob[0].ResumePath)
	})

	t.Run("unknown job is a validation error", func(t *testing.T) {
		_, err := db.CreateCandidate(ctx, &CandidateCreateInput{
			JobID: 424242, Name: "Nobody", Email: "n@example.com", ResumePath: "resume-" + uuid.NewString() + ".pdf",
		})
		var ve *types.ValidationError
		require.True(t, errors.As(err, &ve), "got %v", err)
		assert.Equal(t, "job_id", ve.Field)
	})

	t.Run("referenced resume paths", func(t *testing.T) {
		refs, err := db.ReferencedResumePaths(ctx, []string{"resume-1-1.pdf", "resume-orphan.pdf"})
		require.NoError(t, err)
		assert.True(t, refs["resume-1-1.pdf"])
		assert.False(t, refs["resume-orphan.pdf"])
	})
}

func TestIntegration_SeedJobs(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	n, err := db.SeedJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.SeedJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "seeding a non-empty table is a no-op")

	jobs, err := db.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "UX Designer", jobs[0].Title)

	count, err := db.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SampleJobs), count)
}
