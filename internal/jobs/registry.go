// Package jobs manages job postings.
package jobs

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/careers-board/internal/db"
	"github.com/jonathan/careers-board/internal/events"
	"github.com/jonathan/careers-board/internal/metrics"
	"github.com/jonathan/careers-board/internal/types"
)

// Store is the persistence the registry needs.
type Store interface {
	CreateJob(ctx context.Context, input *db.JobCreateInput) (*db.Job, error)
	GetJob(ctx context.Context, id int64) (*db.Job, error)
	ListJobs(ctx context.Context) ([]db.Job, error)
}

// Result is a created job plus the events to publish for it.
type Result struct {
	Job    *db.Job
	Events []events.Event
}

// Registry creates and looks up jobs.
type Registry struct {
	store   Store
	metrics metrics.Sink
	log     logrus.FieldLogger
}

// NewRegistry creates a registry over store.
func NewRegistry(store Store, sink metrics.Sink, log logrus.FieldLogger) *Registry {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{store: store, metrics: sink, log: log}
}

// Create validates req, stores the job and returns a job:created event for it.
// Nothing is stored when validation fails.
func (r *Registry) Create(ctx context.Context, req *types.CreateJobRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := r.store.CreateJob(ctx, &db.JobCreateInput{
		Title:       req.Title,
		Department:  req.Department,
		Location:    req.Location,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	r.metrics.JobCreated()
	r.log.WithFields(logrus.Fields{"job_id": job.ID, "title": job.Title}).Info("job created")

	ev, err := events.NewJobCreated(job)
	if err != nil {
		// The job is already committed.
		r.log.WithError(err).WithField("job_id", job.ID).Error("failed to build job event")
		return &Result{Job: job}, nil
	}
	return &Result{Job: job, Events: []events.Event{ev}}, nil
}

// List returns every job, newest first.
func (r *Registry) List(ctx context.Context) ([]db.Job, error) {
	return r.store.ListJobs(ctx)
}

// Get returns a single job or a *types.NotFoundError.
func (r *Registry) Get(ctx context.Context, id int64) (*db.Job, error) {
	job, err := r.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: strconv.FormatInt(id, 10)}
	}
	return job, nil
}
