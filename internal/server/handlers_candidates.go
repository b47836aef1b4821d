package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jonathan/careers-board/internal/pipeline"
	"github.com/jonathan/careers-board/internal/types"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// handleApply accepts a multipart application with a resume file.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, err)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll() //nolint:errcheck
	}

	var sub pipeline.Submission
	if fh := formFile(r.MultipartForm, pipeline.ResumeField); fh != nil {
		file, err := fh.Open()
		if err != nil {
			s.writeError(w, r, &types.StorageError{Op: "read upload", Cause: err})
			return
		}
		defer file.Close() //nolint:errcheck
		sub.File = file
		sub.FileName = fh.Filename
	}

	sub.Request.Name = r.FormValue("name")
	sub.Request.Email = r.FormValue("email")
	if sub.File != nil {
		jobID, err := pipeline.ParseJobID(r.FormValue("job_id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		sub.Request.JobID = jobID
	}

	res, err := s.pipeline.Submit(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.dispatcher.Dispatch(r.Context(), res.Events...)

	s.jsonResponse(w, http.StatusOK, map[string]int64{"id": res.Candidate.ID})
}

// formFile returns the first file uploaded under field.
func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

// handleListCandidates returns every candidate with its job title, newest first.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	list, err := s.candidates.ListCandidates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleListCandidatesForJob returns the candidates of one job, newest first.
// An unknown job yields an empty list.
func (s *Server) handleListCandidatesForJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.PathValue("jobId"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	list, err := s.candidates.ListCandidatesForJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}
