package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/careers-board/internal/schemas"
	"github.com/jonathan/careers-board/internal/types"
	schemafiles "github.com/jonathan/careers-board/schemas"
)

// handleListJobs returns every job, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleGetJob returns a single job. Ids that cannot exist are reported as not found.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, &types.NotFoundError{Resource: "job", ID: raw})
		return
	}

	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleCreateJob creates a job and announces it.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := schemas.Validate(schemafiles.JobCreate, body); err != nil {
		s.writeError(w, r, schemaError(err))
		return
	}

	var req types.CreateJobRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.jobs.Create(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.dispatcher.Dispatch(r.Context(), res.Events...)

	s.jsonResponse(w, http.StatusOK, map[string]int64{"id": res.Job.ID})
}

// schemaError converts a schema violation into a request validation error.
func schemaError(err error) error {
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		fe := ve.First()
		if fe.Field == "(root)" {
			return &types.ValidationError{Message: "Invalid request body: " + fe.Message}
		}
		return &types.ValidationError{Field: fe.Field, Message: fe.Field + ": " + fe.Message}
	}
	return err
}
