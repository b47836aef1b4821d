package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careers-board/internal/db"
	"github.com/jonathan/careers-board/internal/events"
	"github.com/jonathan/careers-board/internal/logging"
	"github.com/jonathan/careers-board/internal/types"
)

type fakeStore struct {
	mu     sync.Mutex
	jobs   []db.Job
	nextID int64
	err    error
}

func (f *fakeStore) CreateJob(_ context.Context, in *db.JobCreateInput) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	job := db.Job{
		ID:          f.nextID,
		Title:       in.Title,
		Department:  in.Department,
		Location:    in.Location,
		Type:        in.Type,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	f.jobs = append(f.jobs, job)
	return &job, nil
}

func (f *fakeStore) GetJob(_ context.Context, id int64) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			job := f.jobs[i]
			return &job, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListJobs(context.Context) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]db.Job{}, f.jobs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func validRequest() *types.CreateJobRequest {
	return &types.CreateJobRequest{
		Title:      "Backend Engineer",
		Department: "Eng",
		Location:   "Remote",
		Type:       "Full-time",
	}
}

func TestRegistry_Create(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store, nil, logging.Discard())

	res, err := reg.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Job.ID)
	assert.Equal(t, "", res.Job.Description)

	require.Len(t, res.Events, 1)
	assert.Equal(t, events.JobCreated, res.Events[0].Name)
	assert.Contains(t, string(res.Events[0].Data), `"title":"Backend Engineer"`)
}

func TestRegistry_Create_ValidationStoresNothing(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store, nil, logging.Discard())

	req := validRequest()
	req.Department = "   "
	_, err := reg.Create(context.Background(), req)

	var ve *types.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "department", ve.Field)
	assert.Empty(t, store.jobs)
}

func TestRegistry_Create_StoreError(t *testing.T) {
	store := &fakeStore{err: &types.PersistenceError{Op: "create job", Cause: errors.New("down")}}
	reg := NewRegistry(store, nil, logging.Discard())

	_, err := reg.Create(context.Background(), validRequest())
	var pe *types.PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestRegistry_ListNewestFirst(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store, nil, logging.Discard())
	ctx := context.Background()

	for _, title := range []string{"First", "Second"} {
		req := validRequest()
		req.Title = title
		_, err := reg.Create(ctx, req)
		require.NoError(t, err)
	}

	list, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)
}

func TestRegistry_Get(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store, nil, logging.Discard())
	ctx := context.Background()

	res, err := reg.Create(ctx, validRequest())
	require.NoError(t, err)

	job, err := reg.Get(ctx, res.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)

	_, err = reg.Get(ctx, 99)
	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "job", nf.Resource)
	assert.Equal(t, "99", nf.ID)
}
