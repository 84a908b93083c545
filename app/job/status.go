package job

import (
	"fmt"
	"strings"
)

// Status is the pipeline state of an application. Any status may follow any other.
// Values outside the known set can arrive from a backend and are kept as-is.
type Status string

// known statuses, in display order
const (
	StatusApplied   Status = "Applied"
	StatusContacted Status = "Contacted"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusGhosted   Status = "Ghosted"
)

// Category groups statuses for display
type Category string

// display categories
const (
	CategoryActive  Category = "active"
	CategorySuccess Category = "success"
	CategoryClosed  Category = "closed"
	CategoryUnknown Category = "unknown"
)

var statuses = []Status{StatusApplied, StatusContacted, StatusInterview, StatusOffer, StatusRejected, StatusGhosted}

// Statuses returns all known statuses in display order
func Statuses() []Status {
	res := make([]Status, len(statuses))
	copy(res, statuses)
	return res
}

// ParseStatus converts a string to a known status, case-insensitive
func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q, expected one of %v", s, statuses)
}

// Valid reports whether the status belongs to the known set
func (s Status) Valid() bool {
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Category maps the status to its display category
func (s Status) Category() Category {
	switch s {
	case StatusApplied, StatusContacted, StatusInterview:
		return CategoryActive
	case StatusOffer:
		return CategorySuccess
	case StatusRejected, StatusGhosted:
		return CategoryClosed
	default:
		return CategoryUnknown
	}
}

func (s Status) String() string { return string(s) }
