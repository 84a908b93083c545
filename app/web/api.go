package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobtrack/app/job"
	"github.com/umputun/jobtrack/app/remote"
	"github.com/umputun/jobtrack/app/tracker"
	"github.com/umputun/jobtrack/app/view"
)

// APIJobsResponse is the JSON response for GET /api/v1/jobs
type APIJobsResponse struct {
	Collection string    `json:"collection"`
	Mode       string    `json:"mode"`
	Jobs       []job.Job `json:"jobs"`
	Total      int       `json:"total"` // size of the working set before filtering
	Timestamp  time.Time `json:"timestamp"`
}

// APIStateResponse is the JSON response for GET /api/v1/state
type APIStateResponse struct {
	Collection  string   `json:"collection"`
	Collections []string `json:"collections"`
	Mode        string   `json:"mode"`
	Endpoint    string   `json:"endpoint,omitempty"`
	Loading     bool     `json:"loading"`
	Count       int      `json:"count"`
}

// APIJobRequest is the body of create and update requests
type APIJobRequest struct {
	Company   string `json:"company"`
	Position  string `json:"position"`
	Status    string `json:"status"`
	Salary    string `json:"salary"`
	Location  string `json:"location"`
	ApplyVia  string `json:"applyVia"`
	ApplyDate string `json:"applyDate"`
	Notes     string `json:"notes"`
}

// draft validates the request and converts it to a job draft. Empty status is allowed.
func (r APIJobRequest) draft() (job.Job, error) {
	res := job.Job{Company: r.Company, Position: r.Position, Salary: r.Salary, Location: r.Location,
		ApplyVia: r.ApplyVia, ApplyDate: r.ApplyDate, Notes: r.Notes}
	if r.Status != "" {
		st, err := job.ParseStatus(r.Status)
		if err != nil {
			return job.Job{}, err
		}
		res.Status = st
	}
	if r.ApplyDate != "" {
		if _, err := time.Parse(job.DateLayout, r.ApplyDate); err != nil {
			return job.Job{}, errors.New("applyDate must be YYYY-MM-DD")
		}
	}
	return res, nil
}

// handleListJobs returns the filtered working set
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	status := job.Status(view.StatusAll)
	if v := r.URL.Query().Get("status"); v != "" && v != view.StatusAll {
		st, err := job.ParseStatus(v)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = st
	}

	jobs := s.tracker.Jobs()
	resp := APIJobsResponse{
		Collection: s.tracker.Collection(),
		Mode:       s.tracker.Mode().String(),
		Jobs:       view.Filter(jobs, r.URL.Query().Get("search"), status),
		Total:      len(jobs),
		Timestamp:  time.Now(),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleStats returns counts by status and category for the working set
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, view.Summarize(s.tracker.Jobs()))
}

// handleState returns the active collection and backend
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := s.tracker.Save(ctx, draft, nil); err != nil {
		s.writeTrackerError(w, "create job", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.state())
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	target, found := s.tracker.Find(r.PathValue("id"))
	if !found {
		s.writeJSONError(w, http.StatusNotFound, "job not found")
		return
	}
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := s.tracker.Save(ctx, draft, &target); err != nil {
		s.writeTrackerError(w, "update job", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	target, found := s.tracker.Find(r.PathValue("id"))
	if !found {
		s.writeJSONError(w, http.StatusNotFound, "job not found")
		return
	}
	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := s.tracker.Delete(ctx, target); err != nil {
		s.writeTrackerError(w, "delete job", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := s.tracker.Refresh(ctx); err != nil {
		s.writeTrackerError(w, "refresh", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleSwitchCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := s.tracker.SwitchCollection(ctx, req.Name); err != nil {
		s.writeTrackerError(w, "switch collection", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleSetConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := s.tracker.SetConnection(ctx, req.URL); err != nil {
		s.writeTrackerError(w, "set connection", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) state() APIStateResponse {
	return APIStateResponse{
		Collection:  s.tracker.Collection(),
		Collections: s.tracker.Collections(),
		Mode:        s.tracker.Mode().String(),
		Endpoint:    s.tracker.Endpoint(),
		Loading:     s.tracker.IsLoading(),
		Count:       len(s.tracker.Jobs()),
	}
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (job.Job, bool) {
	var req APIJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return job.Job{}, false
	}
	draft, err := req.draft()
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return job.Job{}, false
	}
	return draft, true
}

// callContext bounds a backend call by the server timeout
func (s *Server) callContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

// writeTrackerError maps controller errors to status codes
func (s *Server) writeTrackerError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tracker.ErrUnknownCollection):
		status = http.StatusBadRequest
	case errors.Is(err, remote.ErrInvalidTarget):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, remote.ErrBackend), errors.Is(err, remote.ErrTransport):
		status = http.StatusBadGateway
	}
	log.Printf("[WARN] failed to %s: %v", op, err)
	s.writeJSONError(w, status, err.Error())
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}
