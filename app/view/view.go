// Package view derives filtered lists and status counts from a working set.
// All functions are pure and never modify their input.
package view

import (
	"strings"

	"github.com/umputun/jobtrack/app/job"
)

// StatusAll disables status filtering
const StatusAll = "all"

// Filter returns jobs whose company or position contains search (case-insensitive) and whose status
// equals status. Empty status or StatusAll matches any status.
func Filter(jobs []job.Job, search string, status job.Status) []job.Job {
	needle := strings.ToLower(search)
	anyStatus := status == "" || strings.EqualFold(string(status), StatusAll)

	res := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if !anyStatus && j.Status != status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(j.Company), needle) &&
			!strings.Contains(strings.ToLower(j.Position), needle) {
			continue
		}
		res = append(res, j)
	}
	return res
}

// CountsByStatus counts jobs per known status. All known statuses are present,
// jobs with unknown statuses are not counted.
func CountsByStatus(jobs []job.Job) map[job.Status]int {
	res := make(map[job.Status]int, len(job.Statuses()))
	for _, s := range job.Statuses() {
		res[s] = 0
	}
	for _, j := range jobs {
		if _, ok := res[j.Status]; ok {
			res[j.Status]++
		}
	}
	return res
}

// Summary aggregates a working set for display
type Summary struct {
	Total      int                  `json:"total" yaml:"total"`
	ByStatus   map[job.Status]int   `json:"by_status" yaml:"by_status"`
	ByCategory map[job.Category]int `json:"by_category" yaml:"by_category"`
	Unknown    int                  `json:"unknown" yaml:"unknown"` // jobs with a status outside the known set
}

// Summarize returns counts by status and by display category
func Summarize(jobs []job.Job) Summary {
	res := Summary{
		Total:    len(jobs),
		ByStatus: CountsByStatus(jobs),
		ByCategory: map[job.Category]int{
			job.CategoryActive: 0, job.CategorySuccess: 0, job.CategoryClosed: 0,
		},
	}
	for s, n := range res.ByStatus {
		res.ByCategory[s.Category()] += n
	}
	counted := 0
	for _, n := range res.ByStatus {
		counted += n
	}
	res.Unknown = res.Total - counted
	return res
}
