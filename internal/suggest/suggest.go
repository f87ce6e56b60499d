// Package suggest derives comparison shortcuts from a user's saved jobs.
package suggest

import (
	"fmt"

	"lmia/compare-service/internal/compare"
)

// SavedJob is a saved posting from either source dataset. Field names differ
// between the two schemas (lmia vs hot_leads), so both variants are carried
// and resolved through the accessor methods.
type SavedJob struct {
	RecordID string `json:"record_id"`
	Dataset  string `json:"dataset"` // "lmia" or "hot_leads"

	JobTitle        string `json:"job_title,omitempty"`
	OccupationTitle string `json:"occupation_title,omitempty"`
	OperatingName   string `json:"operating_name,omitempty"`
	Employer        string `json:"employer,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Territory       string `json:"territory,omitempty"`
}

// Title resolves the job title regardless of source dataset.
func (j SavedJob) Title() string {
	if j.JobTitle != "" {
		return j.JobTitle
	}
	return j.OccupationTitle
}

// EmployerName resolves the employer name regardless of source dataset.
func (j SavedJob) EmployerName() string {
	if j.OperatingName != "" {
		return j.OperatingName
	}
	return j.Employer
}

// Region resolves the province/territory regardless of source dataset.
func (j SavedJob) Region() string {
	if j.State != "" {
		return j.State
	}
	return j.Territory
}

// Suggestion is one proposed comparison shortcut.
type Suggestion struct {
	Label string                 `json:"label"`
	Job1  SavedJob               `json:"job1"`
	Job2  SavedJob               `json:"job2"`
	Type  compare.ComparisonType `json:"type"`
}

// maxSuggestions caps the returned list.
const maxSuggestions = 3

// Suggestions proposes up to three comparisons from the user's saved jobs.
//
// Two heuristics run independently: same title in different cities, then
// different roles at the same employer. Each group contributes at most one
// suggestion, built from its first two members only; groups are never
// exhaustively paired. The results are concatenated in that heuristic order
// and truncated to three, so the second heuristic is starved whenever the
// first alone yields three or more. That ordering matches the behavior the
// product shipped with; do not interleave.
func Suggestions(jobs []SavedJob) []Suggestion {
	if len(jobs) < 2 {
		return nil
	}

	var out []Suggestion

	// Same title, different city.
	for _, group := range groupBy(jobs, SavedJob.Title) {
		if len(group) < 2 || group[0].City == group[1].City {
			continue
		}
		out = append(out, Suggestion{
			Label: fmt.Sprintf("%s in different cities", group[0].Title()),
			Job1:  group[0],
			Job2:  group[1],
			Type:  compare.TypeCity,
		})
	}

	// Different title, same employer.
	for _, group := range groupBy(jobs, SavedJob.EmployerName) {
		if len(group) < 2 || group[0].Title() == group[1].Title() {
			continue
		}
		out = append(out, Suggestion{
			Label: fmt.Sprintf("Different roles at %s", group[0].EmployerName()),
			Job1:  group[0],
			Job2:  group[1],
			Type:  compare.TypeJobTitle,
		})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// groupBy buckets jobs by key, preserving first-seen group order so the
// suggestion list is deterministic. Jobs with an empty key are skipped.
func groupBy(jobs []SavedJob, key func(SavedJob) string) [][]SavedJob {
	index := make(map[string]int)
	var groups [][]SavedJob
	for _, j := range jobs {
		k := key(j)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], j)
	}
	return groups
}
