package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/jobtrack/app/job"
	"github.com/umputun/jobtrack/app/persistence"
	"github.com/umputun/jobtrack/app/remote"
	"github.com/umputun/jobtrack/app/tracker"
	"github.com/umputun/jobtrack/app/tracker/mocks"
	"github.com/umputun/jobtrack/app/view"
)

func seed(t *testing.T, ctrl *tracker.Controller, jobs ...job.Job) {
	t.Helper()
	for _, j := range jobs {
		require.NoError(t, ctrl.Save(t.Context(), j, nil))
	}
}

func TestHandleListJobs(t *testing.T) {
	srv, ctrl := newLocalServer(t)
	seed(t, ctrl,
		job.Job{Company: "Acme", Position: "Dev", Status: job.StatusInterview},
		job.Job{Company: "Globex", Position: "Ops", Status: job.StatusRejected},
		job.Job{Company: "Initech", Position: "Dev"},
	)

	tbl := []struct {
		name, query string
		code        int
		companies   []string
	}{
		{"all", "", http.StatusOK, []string{"Acme", "Globex", "Initech"}},
		{"status all", "?status=all", http.StatusOK, []string{"Acme", "Globex", "Initech"}},
		{"by status", "?status=interview", http.StatusOK, []string{"Acme"}},
		{"by search", "?search=DEV", http.StatusOK, []string{"Acme", "Initech"}},
		{"search and status", "?search=dev&status=Applied", http.StatusOK, []string{"Initech"}},
		{"bad status", "?status=nope", http.StatusBadRequest, nil},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs"+tt.query, http.NoBody)
			w := httptest.NewRecorder()
			srv.handleListJobs(w, req)
			require.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.code != http.StatusOK {
				return
			}

			var resp APIJobsResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "Didil", resp.Collection)
			assert.Equal(t, "local", resp.Mode)
			assert.Equal(t, 3, resp.Total)
			companies := make([]string, 0, len(resp.Jobs))
			for _, j := range resp.Jobs {
				companies = append(companies, j.Company)
			}
			assert.Equal(t, tt.companies, companies)
		})
	}
}

func TestHandleStats(t *testing.T) {
	srv, ctrl := newLocalServer(t)
	seed(t, ctrl,
		job.Job{Company: "A", Status: job.StatusOffer},
		job.Job{Company: "B", Status: job.StatusGhosted},
		job.Job{Company: "C"},
	)

	w := httptest.NewRecorder()
	srv.handleStats(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var sum view.Summary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sum))
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.ByStatus[job.StatusApplied])
	assert.Equal(t, 1, sum.ByCategory[job.CategorySuccess])
	assert.Equal(t, 1, sum.ByCategory[job.CategoryClosed])
	assert.Equal(t, 0, sum.Unknown)
}

func TestHandleCreateJob(t *testing.T) {
	srv, ctrl := newLocalServer(t)

	t.Run("created", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs",
			strings.NewReader(`{"company":"Acme","position":"Dev","status":"offer","salary":"10k"}`))
		w := httptest.NewRecorder()
		srv.handleCreateJob(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var state APIStateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
		assert.Equal(t, 1, state.Count)
		jobs := ctrl.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, job.StatusOffer, jobs[0].Status)
		assert.Equal(t, "10k", jobs[0].Salary)
	})

	tbl := []struct{ name, body, errMsg string }{
		{"bad json", `{`, "invalid request body"},
		{"bad status", `{"company":"X","status":"Maybe"}`, "unknown status"},
		{"bad date", `{"company":"X","applyDate":"01/02/2024"}`, "applyDate must be YYYY-MM-DD"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.handleCreateJob(w, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Contains(t, resp["error"], tt.errMsg)
		})
	}
	assert.Len(t, ctrl.Jobs(), 1)
}

func TestHandleUpdateAndDeleteJob(t *testing.T) {
	srv, ctrl := newLocalServer(t)
	seed(t, ctrl, job.Job{Company: "Acme", Position: "Dev"}, job.Job{Company: "Globex", Position: "Ops"})
	id := ctrl.Jobs()[0].ID

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/jobs/"+id,
		strings.NewReader(`{"company":"Acme","position":"Lead","status":"Interview"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated, ok := ctrl.Find(id)
	require.True(t, ok, "local edit keeps the id")
	assert.Equal(t, "Lead", updated.Position)
	assert.Equal(t, job.StatusInterview, updated.Status)

	req, err = http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/jobs/"+id, http.NoBody)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, ctrl.Jobs(), 1)
	assert.Equal(t, "Globex", ctrl.Jobs()[0].Company)

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		req, err = http.NewRequest(method, ts.URL+"/api/v1/jobs/"+id, strings.NewReader(`{}`))
		require.NoError(t, err)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
	}
}

func TestHandleSwitchCollection(t *testing.T) {
	srv, ctrl := newLocalServer(t)
	seed(t, ctrl, job.Job{Company: "Acme"})

	w := httptest.NewRecorder()
	srv.handleSwitchCollection(w, httptest.NewRequest(http.MethodPost, "/api/v1/collection", strings.NewReader(`{"name":"Sabil"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	var state APIStateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, "Sabil", state.Collection)
	assert.Equal(t, []string{"Didil", "Sabil"}, state.Collections)
	assert.Equal(t, 0, state.Count)

	w = httptest.NewRecorder()
	srv.handleSwitchCollection(w, httptest.NewRequest(http.MethodPost, "/api/v1/collection", strings.NewReader(`{"name":"Other"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Sabil", ctrl.Collection())

	w = httptest.NewRecorder()
	srv.handleSwitchCollection(w, httptest.NewRequest(http.MethodPost, "/api/v1/collection", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRefresh(t *testing.T) {
	srv, ctrl := newLocalServer(t)
	seed(t, ctrl, job.Job{Company: "Acme"})

	w := httptest.NewRecorder()
	srv.handleRefresh(w, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	var state APIStateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, 1, state.Count)
	assert.False(t, state.Loading)
}

func TestHandleSetConnection(t *testing.T) {
	store, err := persistence.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	rs := &mocks.RemoteStoreMock{
		ReadFunc: func(context.Context, string) ([]job.Job, error) {
			return []job.Job{{ID: "r1", RowIndex: 2, Company: "Remote Co", Status: job.StatusApplied}}, nil
		},
	}
	ctrl, err := tracker.New(tracker.Config{Local: store, Remote: func(string) tracker.RemoteStore { return rs }})
	require.NoError(t, err)
	srv, err := New(Config{Tracker: ctrl})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.handleSetConnection(w, httptest.NewRequest(http.MethodPost, "/api/v1/connection",
		strings.NewReader(`{"url":" http://sheet.example.com/exec "}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var state APIStateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, "remote", state.Mode)
	assert.Equal(t, "http://sheet.example.com/exec", state.Endpoint)
	assert.Equal(t, 1, state.Count)
	assert.Equal(t, "http://sheet.example.com/exec", store.LoadConnection())

	w = httptest.NewRecorder()
	srv.handleSetConnection(w, httptest.NewRequest(http.MethodPost, "/api/v1/connection", strings.NewReader(`{"url":""}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "local", ctrl.Mode().String())
	assert.Empty(t, ctrl.Jobs())
}

func TestWriteTrackerError(t *testing.T) {
	tbl := []struct {
		name string
		err  error
		code int
	}{
		{"not found", fmt.Errorf("failed: %w", tracker.ErrNotFound), http.StatusNotFound},
		{"unknown collection", tracker.ErrUnknownCollection, http.StatusBadRequest},
		{"invalid target", fmt.Errorf("save: %w", remote.ErrInvalidTarget), http.StatusUnprocessableEntity},
		{"backend", &remote.BackendError{Action: "update", Message: "Invalid Row Index for update"}, http.StatusBadGateway},
		{"transport", fmt.Errorf("%w: connection refused", remote.ErrTransport), http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	srv := &Server{}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.writeTrackerError(w, "test", tt.err)
			assert.Equal(t, tt.code, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.err.Error(), resp["error"])
		})
	}
}

func TestHandleUpdateJob_RemoteRejected(t *testing.T) {
	store, err := persistence.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	rs := &mocks.RemoteStoreMock{
		ReadFunc: func(context.Context, string) ([]job.Job, error) {
			return []job.Job{{ID: "r1", RowIndex: 2, Company: "Remote Co", Status: job.StatusApplied}}, nil
		},
		UpdateFunc: func(context.Context, string, int, job.Job) error {
			return &remote.BackendError{Action: "update", Message: "Invalid Row Index for update"}
		},
	}
	ctrl, err := tracker.New(tracker.Config{Local: store, Endpoint: "http://sheet.example.com/exec",
		Remote: func(string) tracker.RemoteStore { return rs }})
	require.NoError(t, err)
	require.NoError(t, ctrl.Refresh(t.Context()))
	srv, err := New(Config{Tracker: ctrl})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/jobs/r1", strings.NewReader(`{"company":"X"}`))
	req.SetPathValue("id", "r1")
	w := httptest.NewRecorder()
	srv.handleUpdateJob(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Row Index for update")
	assert.Len(t, rs.UpdateCalls(), 1)
	assert.Equal(t, 2, rs.UpdateCalls()[0].RowIndex)
}
