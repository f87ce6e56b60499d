package suggest_test

import (
	"fmt"
	"testing"

	"lmia/compare-service/internal/compare"
	"lmia/compare-service/internal/suggest"
)

func lmiaJob(title, employer, city string) suggest.SavedJob {
	return suggest.SavedJob{
		Dataset:       "lmia",
		JobTitle:      title,
		OperatingName: employer,
		City:          city,
	}
}

func hotLeadJob(title, employer, city string) suggest.SavedJob {
	return suggest.SavedJob{
		Dataset:         "hot_leads",
		OccupationTitle: title,
		Employer:        employer,
		City:            city,
	}
}

// ── Minimum input ──────────────────────────────────────────────────────────

func TestSuggestions_FewerThanTwoJobs(t *testing.T) {
	if got := suggest.Suggestions(nil); len(got) != 0 {
		t.Errorf("Suggestions(nil) = %v, want empty", got)
	}
	one := []suggest.SavedJob{lmiaJob("Chef", "Acme", "Toronto")}
	if got := suggest.Suggestions(one); len(got) != 0 {
		t.Errorf("Suggestions with one job = %v, want empty", got)
	}
}

// ── Heuristic A: same title, different city ────────────────────────────────

func TestSuggestions_SameTitleDifferentCity(t *testing.T) {
	jobs := []suggest.SavedJob{
		lmiaJob("Chef", "Acme", "Toronto"),
		lmiaJob("Chef", "Globex", "Vancouver"),
	}

	got := suggest.Suggestions(jobs)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	s := got[0]
	if s.Label != "Chef in different cities" {
		t.Errorf("label = %q", s.Label)
	}
	if s.Type != compare.TypeCity {
		t.Errorf("type = %s, want city", s.Type)
	}
	if s.Job1.City != "Toronto" || s.Job2.City != "Vancouver" {
		t.Errorf("suggestion pairs %q and %q, want the group's first two members", s.Job1.City, s.Job2.City)
	}
}

// Only a group's first two members are ever compared; a same-city pair at
// the head of the group suppresses the suggestion even when a later member
// differs.
func TestSuggestions_OnlyFirstTwoGroupMembersConsidered(t *testing.T) {
	jobs := []suggest.SavedJob{
		lmiaJob("Chef", "Acme", "Toronto"),
		lmiaJob("Chef", "Globex", "Toronto"),
		lmiaJob("Chef", "Initech", "Vancouver"),
	}
	if got := suggest.Suggestions(jobs); len(got) != 0 {
		t.Errorf("got %v, want none: first two group members share a city", got)
	}
}

// ── Heuristic B: different title, same employer ────────────────────────────

func TestSuggestions_DifferentRolesSameEmployer(t *testing.T) {
	jobs := []suggest.SavedJob{
		lmiaJob("Chef", "Acme", "Toronto"),
		lmiaJob("Cook", "Acme", "Toronto"),
	}

	got := suggest.Suggestions(jobs)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	s := got[0]
	if s.Label != "Different roles at Acme" {
		t.Errorf("label = %q", s.Label)
	}
	if s.Type != compare.TypeJobTitle {
		t.Errorf("type = %s, want job_title", s.Type)
	}
}

// ── Concatenate-then-truncate order ────────────────────────────────────────

// Four title-based candidates and two employer-based candidates must yield
// exactly the first three title-based ones. The second heuristic is starved:
// not interleaved.
func TestSuggestions_TruncationStarvesSecondHeuristic(t *testing.T) {
	var jobs []suggest.SavedJob
	for i := 0; i < 4; i++ {
		title := fmt.Sprintf("Role%d", i)
		jobs = append(jobs,
			lmiaJob(title, fmt.Sprintf("EmpA%d", i), "Toronto"),
			lmiaJob(title, fmt.Sprintf("EmpB%d", i), "Vancouver"),
		)
	}
	// Two employer groups with differing titles.
	jobs = append(jobs,
		lmiaJob("Chef", "SharedOne", "Toronto"),
		lmiaJob("Cook", "SharedOne", "Toronto"),
		lmiaJob("Baker", "SharedTwo", "Toronto"),
		lmiaJob("Waiter", "SharedTwo", "Toronto"),
	)

	got := suggest.Suggestions(jobs)
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	for i, s := range got {
		if s.Type != compare.TypeCity {
			t.Errorf("suggestion %d type = %s, want city (heuristic order is not interleaved)", i, s.Type)
		}
		want := fmt.Sprintf("Role%d in different cities", i)
		if s.Label != want {
			t.Errorf("suggestion %d label = %q, want %q", i, s.Label, want)
		}
	}
}

// ── Dataset field resolution ───────────────────────────────────────────────

// Grouping must see through the two dataset schemas: an lmia job_title and a
// hot_leads occupation_title with the same value belong to one group.
func TestSuggestions_MixedDatasetFieldResolution(t *testing.T) {
	jobs := []suggest.SavedJob{
		lmiaJob("Chef", "Acme", "Toronto"),
		hotLeadJob("Chef", "Globex", "Vancouver"),
	}

	got := suggest.Suggestions(jobs)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1 across datasets", len(got))
	}
	if got[0].Label != "Chef in different cities" {
		t.Errorf("label = %q", got[0].Label)
	}
}

func TestSavedJob_Accessors(t *testing.T) {
	l := suggest.SavedJob{JobTitle: "Chef", OperatingName: "Acme", State: "ON"}
	h := suggest.SavedJob{OccupationTitle: "Cook", Employer: "Globex", Territory: "BC"}

	if l.Title() != "Chef" || h.Title() != "Cook" {
		t.Error("Title must resolve the dataset-specific column")
	}
	if l.EmployerName() != "Acme" || h.EmployerName() != "Globex" {
		t.Error("EmployerName must resolve the dataset-specific column")
	}
	if l.Region() != "ON" || h.Region() != "BC" {
		t.Error("Region must resolve the dataset-specific column")
	}
}
