package server

import (
	"net/http"
)

// handleUpload serves the raw bytes of a stored resume.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("filename")
	f, info, err := s.blobs.Open(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close() //nolint:errcheck

	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, key, info.ModTime(), f)
}
