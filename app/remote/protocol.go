package remote

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/jobtrack/app/enums"
	"github.com/umputun/jobtrack/app/job"
)

// Fields are the row columns in their fixed sheet order
type Fields struct {
	Company   string `json:"company"`
	Position  string `json:"position"`
	Status    string `json:"status"`
	Salary    string `json:"salary"`
	Location  string `json:"location"`
	ApplyVia  string `json:"applyVia"`
	ApplyDate string `json:"applyDate"`
	Notes     string `json:"notes"`
}

// Request is the POST body of a mutation. Fields are omitted for delete.
type Request struct {
	Action   enums.Action `json:"action" jsonschema:"enum=create,enum=update,enum=delete"`
	Sheet    string       `json:"sheet"`
	RowIndex int          `json:"rowIndex,omitempty" jsonschema:"minimum=2"`
	*Fields
}

// Response is returned by both read and mutation requests. Data is set for read only.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    []Row  `json:"data,omitempty"`
}

// Row is a data row returned by read
type Row struct {
	RowIndex int `json:"rowIndex"`
	Fields
}

// UnmarshalJSON accepts rows where the sheet returned numbers, booleans or dates instead of strings
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw struct {
		RowIndex  cell `json:"rowIndex"`
		Company   cell `json:"company"`
		Position  cell `json:"position"`
		Status    cell `json:"status"`
		Salary    cell `json:"salary"`
		Location  cell `json:"location"`
		ApplyVia  cell `json:"applyVia"`
		ApplyDate cell `json:"applyDate"`
		Notes     cell `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	idx, err := strconv.Atoi(string(raw.RowIndex))
	if err != nil {
		return &json.UnmarshalTypeError{Value: "rowIndex " + string(raw.RowIndex), Field: "rowIndex"}
	}
	*r = Row{RowIndex: idx, Fields: Fields{
		Company:   string(raw.Company),
		Position:  string(raw.Position),
		Status:    string(raw.Status),
		Salary:    string(raw.Salary),
		Location:  string(raw.Location),
		ApplyVia:  string(raw.ApplyVia),
		ApplyDate: dateOnly(string(raw.ApplyDate)),
		Notes:     string(raw.Notes),
	}}
	return nil
}

// cell is a sheet value rendered as text
type cell string

func (c *cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*c = ""
	case string:
		*c = cell(val)
	case float64:
		*c = cell(strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		*c = cell(strconv.FormatBool(val))
	default:
		*c = cell(strings.TrimSpace(string(data)))
	}
	return nil
}

// dateOnly converts a serialized sheet date to its calendar date. The sheet sends a date cell as local
// midnight in UTC (2023-12-31T17:00:00.000Z for 2024-01-01 at UTC+7), rounding to the nearest UTC day
// recovers the date for any offset within 12 hours.
func dateOnly(s string) string {
	if len(s) <= len(job.DateLayout) {
		return s
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Add(12 * time.Hour).Truncate(24 * time.Hour).Format(job.DateLayout)
	}
	return s
}

func fieldsFromJob(j job.Job) *Fields {
	return &Fields{
		Company:   j.Company,
		Position:  j.Position,
		Status:    string(j.Status),
		Salary:    j.Salary,
		Location:  j.Location,
		ApplyVia:  j.ApplyVia,
		ApplyDate: j.ApplyDate,
		Notes:     j.Notes,
	}
}

// Job converts the row to a job with the given id
func (r Row) Job(id string) job.Job {
	return job.Job{
		ID:        id,
		RowIndex:  r.RowIndex,
		Company:   r.Company,
		Position:  r.Position,
		Status:    job.Status(r.Status),
		Salary:    r.Salary,
		Location:  r.Location,
		ApplyVia:  r.ApplyVia,
		ApplyDate: r.ApplyDate,
		Notes:     r.Notes,
	}
}

// Values returns the fields in the fixed column order
func (f Fields) Values() []string {
	return []string{f.Company, f.Position, f.Status, f.Salary, f.Location, f.ApplyVia, f.ApplyDate, f.Notes}
}
