package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/umputun/jobtrack/app/job"
	"github.com/umputun/jobtrack/app/sheet"
	"github.com/umputun/jobtrack/app/tracker"
)

// setTestOpts points the global options to a fresh local database
func setTestOpts(t *testing.T) {
	t.Helper()
	saved := opts
	t.Cleanup(func() { opts = saved })
	opts.DB = filepath.Join(t.TempDir(), "jobtrack.db")
	opts.Collections = []string{"Didil", "Sabil"}
	opts.Collection = ""
	opts.Endpoint = ""
	opts.Timeout = 0
}

func strPtr(s string) *string { return &s }

func Test_setupLogsWithLogsDisabled(t *testing.T) {
	opts.Log.Enabled = false
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp(t.TempDir(), "")
	require.NoError(t, err)
	defer func() { opts.Log.Enabled = false }()

	opts.Log.Enabled = true
	opts.Log.Filename = tmpfile.Name()
	opts.Log.MaxSize = 100
	opts.Log.MaxBackups = 7
	opts.Log.MaxAge = 0
	opts.Log.EnabledCompress = false

	out := setupLogs()
	assert.IsType(t, &lumberjack.Logger{}, out)

	logger := out.(*lumberjack.Logger)
	assert.Equal(t, tmpfile.Name(), logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 7, logger.MaxBackups)
	assert.Equal(t, 0, logger.MaxAge)
	assert.False(t, logger.Compress)
}

func Test_resolveRef(t *testing.T) {
	jobs := []job.Job{{ID: "a1", Company: "A"}, {ID: "b2", Company: "B"}, {ID: "3", Company: "C"}}
	tests := []struct {
		name, ref, want string
		wantErr         bool
	}{
		{"by id", "b2", "B", false},
		{"by number", "1", "A", false},
		{"id wins over number", "3", "C", false},
		{"number with spaces", " 2 ", "B", false},
		{"zero", "0", "", true},
		{"past end", "4", "", true},
		{"unknown id", "zz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := resolveRef(jobs, tt.ref)
			if tt.wantErr {
				require.ErrorIs(t, err, tracker.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Company)
		})
	}
}

func TestJobFields_apply(t *testing.T) {
	base := job.Job{ID: "x", Company: "Acme", Position: "Dev", Status: job.StatusApplied, ApplyDate: "2024-01-01"}

	j, err := JobFields{Position: strPtr(" Lead "), Status: strPtr("offer")}.apply(base)
	require.NoError(t, err)
	assert.Equal(t, job.Job{ID: "x", Company: "Acme", Position: "Lead", Status: job.StatusOffer, ApplyDate: "2024-01-01"}, j)

	_, err = JobFields{Status: strPtr("maybe")}.apply(base)
	require.Error(t, err)

	_, err = JobFields{ApplyDate: strPtr("2024/01/01")}.apply(base)
	require.Error(t, err)

	j, err = JobFields{ApplyDate: strPtr("")}.apply(base)
	require.NoError(t, err)
	assert.Empty(t, j.ApplyDate, "empty date clears the field")
}

func TestCommands_Local(t *testing.T) {
	setTestOpts(t)

	var buf bytes.Buffer
	add := addCmd{output: output{out: &buf}, JobFields: JobFields{Company: strPtr("Acme"), Position: strPtr("Dev")}}
	require.NoError(t, add.Execute(nil))
	assert.Contains(t, buf.String(), "added Acme to Didil, 1 jobs")

	add = addCmd{output: output{out: &buf}, JobFields: JobFields{Company: strPtr("Globex"), Position: strPtr("Ops"),
		Status: strPtr("Rejected")}}
	require.NoError(t, add.Execute(nil))

	err := (&addCmd{output: output{out: &buf}}).Execute(nil)
	require.EqualError(t, err, "company is required")

	t.Run("list table", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&listCmd{output: output{out: &buf}, Status: "all", Format: "table"}).Execute(nil))
		out := buf.String()
		assert.Contains(t, out, "COMPANY")
		assert.Contains(t, out, "Acme")
		assert.Contains(t, out, "Remote", "default location")
		assert.Contains(t, out, "Didil (local): 2 of 2")
	})

	t.Run("list json filtered", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&listCmd{output: output{out: &buf}, Status: "rejected", Format: "json"}).Execute(nil))
		var jobs []job.Job
		require.NoError(t, json.Unmarshal(buf.Bytes(), &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, "Globex", jobs[0].Company)
	})

	t.Run("list yaml", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&listCmd{output: output{out: &buf}, Search: "acm", Format: "yaml"}).Execute(nil))
		var jobs []job.Job
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, job.StatusApplied, jobs[0].Status)
	})

	t.Run("list bad status", func(t *testing.T) {
		require.Error(t, (&listCmd{output: output{out: &buf}, Status: "nope"}).Execute(nil))
	})

	t.Run("edit by number", func(t *testing.T) {
		buf.Reset()
		edit := editCmd{output: output{out: &buf}, JobFields: JobFields{Status: strPtr("Interview")}}
		edit.Args.Ref = "1"
		require.NoError(t, edit.Execute(nil))
		assert.Contains(t, buf.String(), "updated Acme in Didil")

		buf.Reset()
		require.NoError(t, (&listCmd{output: output{out: &buf}, Status: "Interview", Format: "json"}).Execute(nil))
		var jobs []job.Job
		require.NoError(t, json.Unmarshal(buf.Bytes(), &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, "Dev", jobs[0].Position, "unchanged fields kept")
	})

	t.Run("stats", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, (&statsCmd{output: output{out: &buf}}).Execute(nil))
		out := buf.String()
		assert.Contains(t, out, "Didil")
		assert.Contains(t, out, "Interview")
		assert.Contains(t, out, "closed")
	})

	t.Run("delete", func(t *testing.T) {
		buf.Reset()
		del := deleteCmd{output: output{out: &buf}}
		del.Args.Ref = "2"
		require.NoError(t, del.Execute(nil))
		assert.Contains(t, buf.String(), "deleted Globex from Didil, 1 jobs")

		del.Args.Ref = "5"
		require.ErrorIs(t, del.Execute(nil), tracker.ErrNotFound)
	})

	t.Run("other collection is separate", func(t *testing.T) {
		opts.Collection = "Sabil"
		defer func() { opts.Collection = "" }()
		buf.Reset()
		require.NoError(t, (&listCmd{output: output{out: &buf}, Format: "json"}).Execute(nil))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("unknown collection", func(t *testing.T) {
		opts.Collection = "Other"
		defer func() { opts.Collection = "" }()
		require.ErrorIs(t, (&listCmd{output: output{out: &buf}}).Execute(nil), tracker.ErrUnknownCollection)
	})
}

func TestImportCmd(t *testing.T) {
	setTestOpts(t)
	file := filepath.Join(t.TempDir(), "jobs.yaml")
	data := `
- company: Acme
  position: Dev
  status: interview
  apply_date: "2024-03-01"
- id: ignored
  company: Globex
  position: Ops
`
	require.NoError(t, os.WriteFile(file, []byte(data), 0o600))

	var buf bytes.Buffer
	imp := importCmd{output: output{out: &buf}}
	imp.Args.File = file
	require.NoError(t, imp.Execute(nil))
	assert.Contains(t, buf.String(), "imported 2 jobs to Didil")

	buf.Reset()
	require.NoError(t, (&listCmd{output: output{out: &buf}, Format: "json"}).Execute(nil))
	var jobs []job.Job
	require.NoError(t, json.Unmarshal(buf.Bytes(), &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, job.StatusInterview, jobs[0].Status)
	assert.Equal(t, job.StatusApplied, jobs[1].Status)
	assert.NotEqual(t, "ignored", jobs[1].ID)

	t.Run("bad status rejected before saving", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("- company: X\n  status: Maybe\n"), 0o600))
		imp.Args.File = bad
		require.Error(t, imp.Execute(nil))
	})

	t.Run("missing file", func(t *testing.T) {
		imp.Args.File = filepath.Join(t.TempDir(), "none.yaml")
		require.Error(t, imp.Execute(nil))
	})
}

func TestOverviewCmd(t *testing.T) {
	setTestOpts(t)
	var buf bytes.Buffer
	for _, c := range []string{"Acme", "Globex"} {
		require.NoError(t, (&addCmd{output: output{out: &buf}, JobFields: JobFields{Company: strPtr(c)}}).Execute(nil))
	}

	buf.Reset()
	require.NoError(t, (&overviewCmd{output: output{out: &buf}, Concurrency: 2}).Execute(nil))
	out := buf.String()
	assert.Regexp(t, `Didil\s+2\s+2\s+0\s+0\s+0`, out)
	assert.Regexp(t, `Sabil\s+0\s+0\s+0\s+0\s+0`, out)
}

func Test_loadCollections(t *testing.T) {
	load := func(_ context.Context, name string) ([]job.Job, error) {
		if name == "bad" {
			return nil, errors.New("boom")
		}
		return []job.Job{{Company: name, Status: job.StatusOffer}}, nil
	}
	res := loadCollections(t.Context(), []string{"a", "bad", "c"}, 0, load)
	require.Len(t, res, 3)
	assert.Equal(t, "a", res[0].Name)
	assert.Equal(t, 1, res[0].Summary.Total)
	require.Error(t, res[1].Err)
	assert.Contains(t, res[1].Err.Error(), "boom")
	assert.Equal(t, 1, res[2].Summary.ByCategory[job.CategorySuccess])
}

func TestSchemaCmd(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&schemaCmd{output: output{out: &buf}}).Execute(nil))
	var res map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Contains(t, res, "request")
	assert.Contains(t, res, "response")
	assert.Contains(t, buf.String(), "jobtrack mutation request")
}

func TestConnectCmd_Remote(t *testing.T) {
	setTestOpts(t)
	st, err := sheet.NewStore(filepath.Join(t.TempDir(), "sheet.db"))
	require.NoError(t, err)
	defer st.Close()
	ts := httptest.NewServer(sheet.NewServer(sheet.Config{Store: st}).Handler())
	defer ts.Close()

	var buf bytes.Buffer
	conn := connectCmd{output: output{out: &buf}}
	conn.Args.URL = ts.URL + sheet.Path
	require.NoError(t, conn.Execute(nil))
	assert.Contains(t, buf.String(), "mode remote, Didil has 0 jobs")

	require.NoError(t, (&addCmd{output: output{out: &buf}, JobFields: JobFields{Company: strPtr("Acme")}}).Execute(nil))
	require.NoError(t, (&addCmd{output: output{out: &buf}, JobFields: JobFields{Company: strPtr("Globex")}}).Execute(nil))

	del := deleteCmd{output: output{out: &buf}}
	del.Args.Ref = "1"
	require.NoError(t, del.Execute(nil))

	buf.Reset()
	require.NoError(t, (&listCmd{output: output{out: &buf}, Format: "json"}).Execute(nil))
	var jobs []job.Job
	require.NoError(t, json.Unmarshal(buf.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "Globex", jobs[0].Company)
	assert.Equal(t, 2, jobs[0].RowIndex)

	buf.Reset()
	conn.Args.URL = ""
	require.NoError(t, conn.Execute(nil))
	assert.Contains(t, buf.String(), "mode local, Didil has 0 jobs", "remote records are not copied locally")
}
