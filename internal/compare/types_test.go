package compare_test

import (
	"testing"

	"lmia/compare-service/internal/compare"
)

// ── ParseComparisonType ────────────────────────────────────────────────────

func TestParseComparisonType_ValidValues(t *testing.T) {
	valid := []string{"job_title", "state", "city", "employer"}
	for _, s := range valid {
		got, err := compare.ParseComparisonType(s)
		if err != nil {
			t.Errorf("ParseComparisonType(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseComparisonType(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseComparisonType_InvalidValue(t *testing.T) {
	_, err := compare.ParseComparisonType("salary")
	if err == nil {
		t.Error("ParseComparisonType(\"salary\") expected error, got nil")
	}
}

func TestParseComparisonType_EmptyString(t *testing.T) {
	_, err := compare.ParseComparisonType("")
	if err == nil {
		t.Error("ParseComparisonType(\"\") expected error, got nil")
	}
}

// ParseComparisonType must be case-sensitive; uppercase variants are not valid.
func TestParseComparisonType_CaseSensitive(t *testing.T) {
	uppercase := []string{"JOB_TITLE", "State", "CITY", "Employer"}
	for _, s := range uppercase {
		_, err := compare.ParseComparisonType(s)
		if err == nil {
			t.Errorf("ParseComparisonType(%q) should reject case variant, got nil error", s)
		}
	}
}

// All four constants must round-trip through ParseComparisonType without error.
func TestParseComparisonType_AllConstantsRoundTrip(t *testing.T) {
	all := []compare.ComparisonType{
		compare.TypeJobTitle,
		compare.TypeState,
		compare.TypeCity,
		compare.TypeEmployer,
	}
	for _, ct := range all {
		got, err := compare.ParseComparisonType(string(ct))
		if err != nil {
			t.Errorf("ParseComparisonType(%q) unexpected error: %v", ct, err)
		}
		if got != ct {
			t.Errorf("ParseComparisonType(%q) = %q, want %q", ct, got, ct)
		}
	}
}
