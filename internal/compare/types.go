// Package compare contains the pure business logic for job comparisons:
// the slot selection state machine, the recent/saved comparison log, and
// the comparison queue. It is transport-agnostic and is used by the HTTP
// handlers in handler.go and directly by tests.
package compare

import "fmt"

// ComparisonType says what kind of entity the comparison slots hold.
// Values mirror the type strings persisted by the web client.
type ComparisonType string

const (
	TypeJobTitle ComparisonType = "job_title"
	TypeState    ComparisonType = "state"
	TypeCity     ComparisonType = "city"
	TypeEmployer ComparisonType = "employer"
)

// ParseComparisonType converts a raw string to a ComparisonType, returning
// an error for unknown values.
func ParseComparisonType(s string) (ComparisonType, error) {
	ct := ComparisonType(s)
	switch ct {
	case TypeJobTitle, TypeState, TypeCity, TypeEmployer:
		return ct, nil
	}
	return "", fmt.Errorf("unknown comparison type %q", s)
}

// RecentComparison is one entry in the bounded recent-comparisons history.
type RecentComparison struct {
	Entity1   string         `json:"entity1"`
	Entity2   string         `json:"entity2"`
	Type      ComparisonType `json:"type"`
	Timestamp int64          `json:"timestamp"` // epoch millis
}

// same reports whether two entries compare the same pair under the same type.
// Timestamps are deliberately ignored; the history deduplicates on the
// (entity1, entity2, type) triple.
func (r RecentComparison) same(o RecentComparison) bool {
	return r.Entity1 == o.Entity1 && r.Entity2 == o.Entity2 && r.Type == o.Type
}

// SavedComparison is a comparison the user explicitly saved by name.
type SavedComparison struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Notes     string `json:"notes,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
