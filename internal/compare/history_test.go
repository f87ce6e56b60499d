package compare

import (
	"context"
	"errors"
	"testing"
	"time"

	"lmia/compare-service/internal/store"
)

// newTestLog returns a Log over an in-memory KV with a stepping clock, so
// every mutation gets a strictly increasing timestamp.
func newTestLog() (*Log, *store.MemKV) {
	kv := store.NewMemKV()
	l := NewLog(kv)
	base := time.UnixMilli(1_700_000_000_000)
	n := 0
	l.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return l, kv
}

// ── RecordComparison: cap and dedupe ───────────────────────────────────────

func TestRecordComparison_NewestFirstCappedAtFive(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	pairs := []string{"A", "B", "C", "D", "E", "F", "G"}
	for _, e := range pairs {
		if err := l.RecordComparison(ctx, "u1", e, e+"2", TypeCity); err != nil {
			t.Fatalf("RecordComparison(%q) unexpected error: %v", e, err)
		}
	}

	recent, err := l.Recent(ctx, "u1")
	if err != nil {
		t.Fatalf("Recent unexpected error: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent has %d entries, want 5", len(recent))
	}
	// Newest first: G, F, E, D, C.
	want := []string{"G", "F", "E", "D", "C"}
	for i, w := range want {
		if recent[i].Entity1 != w {
			t.Errorf("recent[%d].Entity1 = %q, want %q", i, recent[i].Entity1, w)
		}
	}
	for i := 1; i < len(recent); i++ {
		if recent[i-1].Timestamp <= recent[i].Timestamp {
			t.Errorf("timestamps not descending at index %d", i)
		}
	}
}

func TestRecordComparison_DedupeKeepsNewerTimestamp(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	if err := l.RecordComparison(ctx, "u1", "Chef", "Cook", TypeJobTitle); err != nil {
		t.Fatalf("first record: %v", err)
	}
	first, _ := l.Recent(ctx, "u1")

	if err := l.RecordComparison(ctx, "u1", "Chef", "Cook", TypeJobTitle); err != nil {
		t.Fatalf("second record: %v", err)
	}
	recent, _ := l.Recent(ctx, "u1")

	if len(recent) != 1 {
		t.Fatalf("recent has %d entries, want 1 after exact duplicate", len(recent))
	}
	if recent[0].Timestamp <= first[0].Timestamp {
		t.Error("duplicate must keep the newer entry's timestamp")
	}
}

// The triple is exact: the same pair under a different type is a new entry,
// and so is the reversed pair.
func TestRecordComparison_DedupeIsExactTriple(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	l.RecordComparison(ctx, "u1", "Chef", "Cook", TypeJobTitle)
	l.RecordComparison(ctx, "u1", "Chef", "Cook", TypeEmployer)
	l.RecordComparison(ctx, "u1", "Cook", "Chef", TypeJobTitle)

	recent, _ := l.Recent(ctx, "u1")
	if len(recent) != 3 {
		t.Errorf("recent has %d entries, want 3 distinct triples", len(recent))
	}
}

// ── Saved comparisons ──────────────────────────────────────────────────────

func TestSaveComparison_RoundTrip(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	entry, err := l.SaveComparison(ctx, "u1", "Kitchen roles", "job_title", "chef vs cook")
	if err != nil {
		t.Fatalf("SaveComparison unexpected error: %v", err)
	}
	if entry.ID == "" {
		t.Error("saved entry must get an ID")
	}

	saved, err := l.Saved(ctx, "u1")
	if err != nil {
		t.Fatalf("Saved unexpected error: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved has %d entries, want 1", len(saved))
	}
	if saved[0] != *entry {
		t.Errorf("reloaded entry = %+v, want %+v", saved[0], *entry)
	}
}

func TestSaveComparison_RequiresName(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	_, err := l.SaveComparison(ctx, "u1", "", "city", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDeleteSaved(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	entry, _ := l.SaveComparison(ctx, "u1", "Kitchen roles", "job_title", "")
	if err := l.DeleteSaved(ctx, "u1", entry.ID); err != nil {
		t.Fatalf("DeleteSaved unexpected error: %v", err)
	}

	saved, _ := l.Saved(ctx, "u1")
	if len(saved) != 0 {
		t.Errorf("saved has %d entries, want 0 after delete", len(saved))
	}

	if err := l.DeleteSaved(ctx, "u1", entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

// ── Corrupted storage ──────────────────────────────────────────────────────

// Malformed stored JSON degrades to an empty collection, never an error.
func TestLoad_CorruptedJSONTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	l, kv := newTestLog()

	kv.Put(store.Key(store.NSRecentComparisons, "u1"), []byte("{not json"))
	kv.Put(store.Key(store.NSSavedComparisons, "u1"), []byte(`"a string, not a list"`))

	recent, err := l.Recent(ctx, "u1")
	if err != nil {
		t.Fatalf("Recent with corrupt blob: unexpected error %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("recent = %v, want empty", recent)
	}

	saved, err := l.Saved(ctx, "u1")
	if err != nil {
		t.Fatalf("Saved with corrupt blob: unexpected error %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("saved = %v, want empty", saved)
	}

	// The corrupt blob is recoverable: the next write replaces it.
	if err := l.RecordComparison(ctx, "u1", "A", "B", TypeCity); err != nil {
		t.Fatalf("RecordComparison after corruption: %v", err)
	}
	recent, _ = l.Recent(ctx, "u1")
	if len(recent) != 1 {
		t.Errorf("recent has %d entries, want 1 after rewrite", len(recent))
	}
}

// ── Comparison queue ───────────────────────────────────────────────────────

func TestQueue_AddRemoveClear(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	for _, name := range []string{"Acme", "Globex", "Acme"} {
		if err := l.AddToQueue(ctx, "u1", name); err != nil {
			t.Fatalf("AddToQueue(%q): %v", name, err)
		}
	}

	queue, _ := l.Queue(ctx, "u1")
	if len(queue) != 2 {
		t.Fatalf("queue = %v, want 2 entries (re-adding is a no-op)", queue)
	}
	if queue[0] != "Acme" || queue[1] != "Globex" {
		t.Errorf("queue = %v, want [Acme Globex] oldest first", queue)
	}

	if err := l.RemoveFromQueue(ctx, "u1", "Acme"); err != nil {
		t.Fatalf("RemoveFromQueue: %v", err)
	}
	if err := l.RemoveFromQueue(ctx, "u1", "Acme"); !errors.Is(err, ErrNotFound) {
		t.Errorf("removing a missing entry: err = %v, want ErrNotFound", err)
	}

	if err := l.ClearQueue(ctx, "u1"); err != nil {
		t.Fatalf("ClearQueue: %v", err)
	}
	queue, _ = l.Queue(ctx, "u1")
	if len(queue) != 0 {
		t.Errorf("queue = %v, want empty after clear", queue)
	}
}

func TestQueue_PerUserIsolation(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()

	l.AddToQueue(ctx, "u1", "Acme")
	l.AddToQueue(ctx, "u2", "Globex")

	q1, _ := l.Queue(ctx, "u1")
	q2, _ := l.Queue(ctx, "u2")
	if len(q1) != 1 || q1[0] != "Acme" {
		t.Errorf("u1 queue = %v, want [Acme]", q1)
	}
	if len(q2) != 1 || q2[0] != "Globex" {
		t.Errorf("u2 queue = %v, want [Globex]", q2)
	}
}
