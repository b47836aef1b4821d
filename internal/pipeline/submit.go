// Package pipeline runs the "submit an application" operation: store the
// resume, record the candidate and describe what to announce.
package pipeline

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/careers-board/internal/db"
	"github.com/jonathan/careers-board/internal/events"
	"github.com/jonathan/careers-board/internal/metrics"
	"github.com/jonathan/careers-board/internal/types"
)

// ResumeField is the multipart field name of the uploaded resume. It also
// prefixes generated blob keys.
const ResumeField = "resume"

// Step names used in logs
const (
	StepValidate = "validate"
	StepJob      = "job_lookup"
	StepBlob     = "store_resume"
	StepInsert   = "insert_candidate"
	StepEvent    = "build_event"
)

// Store is the persistence the pipeline needs.
type Store interface {
	GetJob(ctx context.Context, id int64) (*db.Job, error)
	CreateCandidate(ctx context.Context, input *db.CandidateCreateInput) (*db.Candidate, error)
}

// Blobs stores resume payloads.
type Blobs interface {
	Save(ctx context.Context, field, originalName string, r io.Reader) (string, int64, error)
	Delete(key string) error
}

// Submission is one application as received at the HTTP boundary.
type Submission struct {
	Request  types.ApplyRequest
	FileName string
	// File is nil when no resume was attached.
	File io.Reader
}

// Result is the stored candidate plus the events to publish for it.
type Result struct {
	Candidate *db.Candidate
	Events    []events.Event
}

// Pipeline orchestrates application submission.
type Pipeline struct {
	store   Store
	blobs   Blobs
	metrics metrics.Sink
	log     logrus.FieldLogger
}

// New creates a pipeline.
func New(store Store, blobs Blobs, sink metrics.Sink, log logrus.FieldLogger) *Pipeline {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{store: store, blobs: blobs, metrics: sink, log: log}
}

// Submit validates the submission, stores the resume and inserts the candidate.
//
// Errors are *types.ValidationError (nothing stored), *types.StorageError
// (no candidate created) or *types.PersistenceError (the stored resume is
// removed again). The pipeline never publishes; Result.Events is handed to a
// dispatcher by the caller.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (*Result, error) {
	log := p.log.WithField("job_id", sub.Request.JobID)

	if sub.File == nil {
		p.metrics.ApplicationSubmitted(metrics.OutcomeRejected)
		return nil, &types.ValidationError{Field: ResumeField, Message: "Resume is required"}
	}
	if err := sub.Request.Validate(); err != nil {
		p.metrics.ApplicationSubmitted(metrics.OutcomeRejected)
		return nil, err
	}

	job, err := p.store.GetJob(ctx, sub.Request.JobID)
	if err != nil {
		p.metrics.ApplicationSubmitted(metrics.OutcomePersistenceFail)
		log.WithError(err).WithField("step", StepJob).Error("job lookup failed")
		return nil, err
	}
	if job == nil {
		p.metrics.ApplicationSubmitted(metrics.OutcomeRejected)
		return nil, &types.ValidationError{Field: "job_id", Message: "Job not found"}
	}

	key, n, err := p.blobs.Save(ctx, ResumeField, sub.FileName, sub.File)
	if err != nil {
		p.metrics.ApplicationSubmitted(metrics.OutcomeStorageError)
		log.WithError(err).WithField("step", StepBlob).Error("failed to store resume")
		var se *types.StorageError
		if !errors.As(err, &se) {
			err = &types.StorageError{Op: "write", Cause: err}
		}
		return nil, err
	}
	p.metrics.BlobStored(n)

	cand, err := p.store.CreateCandidate(ctx, &db.CandidateCreateInput{
		JobID:      job.ID,
		Name:       sub.Request.Name,
		Email:      sub.Request.Email,
		ResumePath: key,
	})
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"step": StepInsert, "resume_path": key}).Error("failed to insert candidate")
		p.compensate(log, key)
		return nil, p.insertError(err)
	}
	cand.JobTitle = job.Title
	p.metrics.ApplicationSubmitted(metrics.OutcomeAccepted)
	log.WithFields(logrus.Fields{"candidate_id": cand.ID, "resume_path": key, "bytes": n}).Info("application submitted")

	res := &Result{Candidate: cand}
	ev, err := events.NewCandidateApplied(cand)
	if err != nil {
		log.WithError(err).WithField("step", StepEvent).Error("failed to build candidate event")
		return res, nil
	}
	res.Events = []events.Event{ev}
	return res, nil
}

// compensate removes a blob whose candidate row was never written.
func (p *Pipeline) compensate(log logrus.FieldLogger, key string) {
	if err := p.blobs.Delete(key); err != nil {
		// Left for the janitor
		log.WithError(err).WithField("resume_path", key).Warn("failed to remove orphaned resume")
		return
	}
	p.metrics.BlobCompensated()
}

// insertError keeps validation errors as-is and wraps everything else.
func (p *Pipeline) insertError(err error) error {
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		p.metrics.ApplicationSubmitted(metrics.OutcomeRejected)
		return err
	}
	p.metrics.ApplicationSubmitted(metrics.OutcomePersistenceFail)
	var pe *types.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &types.PersistenceError{Op: "create candidate", Cause: err}
}

// ParseJobID converts the job_id form value. An unparsable value is reported
// as a validation error on job_id.
func ParseJobID(raw string) (int64, error) {
	if raw == "" {
		return 0, &types.ValidationError{Field: "job_id", Message: "job_id is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &types.ValidationError{Field: "job_id", Message: "job_id must be a positive integer"}
	}
	return id, nil
}
