// Package job defines the tracked job application record and its status set.
package job

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO-8601 calendar date format used for ApplyDate
const DateLayout = "2006-01-02"

// DefaultLocation is the location prefilled for new records
const DefaultLocation = "Remote"

// Job is one tracked application. ID is assigned by the client and is not a persistent key
// in remote mode: every read from the remote backend assigns fresh ids.
type Job struct {
	ID        string `json:"id" yaml:"id,omitempty"`
	RowIndex  int    `json:"rowIndex,omitempty" yaml:"row_index,omitempty"` // remote row, 1 is the header, 0 for local records
	Company   string `json:"company" yaml:"company"`
	Position  string `json:"position" yaml:"position"`
	Status    Status `json:"status" yaml:"status"`
	Salary    string `json:"salary" yaml:"salary,omitempty"`
	Location  string `json:"location" yaml:"location,omitempty"`
	ApplyVia  string `json:"applyVia" yaml:"apply_via,omitempty"`
	ApplyDate string `json:"applyDate" yaml:"apply_date,omitempty"`
	Notes     string `json:"notes" yaml:"notes,omitempty"`
}

// NewID makes a new opaque client-side identifier
func NewID() string {
	return uuid.NewString()
}

// Draft returns a template for a new record with form defaults filled in
func Draft(now time.Time) Job {
	return Job{Status: StatusApplied, ApplyDate: now.Format(DateLayout), Location: DefaultLocation}
}

// Normalize returns a copy with an empty status replaced by StatusApplied
func (j Job) Normalize() Job {
	if j.Status == "" {
		j.Status = StatusApplied
	}
	return j
}

// WithIdentity returns the draft fields with identity (id and row index) taken from the target.
// Edits are full-record overwrites, only identity survives.
func (j Job) WithIdentity(target Job) Job {
	j.ID, j.RowIndex = target.ID, target.RowIndex
	return j
}

// Remote reports whether the record references a row in the remote backend
func (j Job) Remote() bool {
	return j.RowIndex > 0
}
