package compare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"lmia/compare-service/internal/store"
)

// recentLimit caps the recent-comparisons history.
const recentLimit = 5

// ErrNotFound is returned when a saved comparison or queue entry is missing.
var ErrNotFound = errors.New("comparison not found")

// Log maintains the persisted comparison collections: the bounded recent
// history, the named saved comparisons, and the comparison queue.
//
// Every mutation persists the full collection before returning; on a
// persistence error the stored state is unchanged and the error is
// surfaced, so callers never hold optimistic state that needs rollback.
type Log struct {
	kv  store.KV
	now func() time.Time
}

// NewLog returns a Log over the given KV store.
func NewLog(kv store.KV) *Log {
	return &Log{kv: kv, now: time.Now}
}

// ─── Recent comparisons ──────────────────────────────────────────────────────

// Recent returns the user's recent comparisons, newest first.
func (l *Log) Recent(ctx context.Context, userID string) ([]RecentComparison, error) {
	return loadList[RecentComparison](ctx, l.kv, store.Key(store.NSRecentComparisons, userID))
}

// RecordComparison appends a comparison to the recent history. An existing
// entry for the same (entity1, entity2, type) triple is dropped first, the
// new entry is prepended, and the list is truncated to the newest five.
func (l *Log) RecordComparison(ctx context.Context, userID, entity1, entity2 string, ctype ComparisonType) error {
	key := store.Key(store.NSRecentComparisons, userID)
	recent, err := loadList[RecentComparison](ctx, l.kv, key)
	if err != nil {
		return err
	}

	entry := RecentComparison{
		Entity1:   entity1,
		Entity2:   entity2,
		Type:      ctype,
		Timestamp: l.now().UnixMilli(),
	}

	kept := make([]RecentComparison, 0, len(recent)+1)
	kept = append(kept, entry)
	for _, r := range recent {
		if !r.same(entry) {
			kept = append(kept, r)
		}
	}
	if len(kept) > recentLimit {
		kept = kept[:recentLimit]
	}

	return saveList(ctx, l.kv, key, kept)
}

// ─── Saved comparisons ───────────────────────────────────────────────────────

// Saved returns the user's saved comparisons.
func (l *Log) Saved(ctx context.Context, userID string) ([]SavedComparison, error) {
	return loadList[SavedComparison](ctx, l.kv, store.Key(store.NSSavedComparisons, userID))
}

// SaveComparison stores a named comparison and returns it with its assigned
// ID and timestamp.
func (l *Log) SaveComparison(ctx context.Context, userID, name, ctype, notes string) (*SavedComparison, error) {
	if name == "" {
		return nil, &ValidationError{Msg: "comparison name is required"}
	}
	key := store.Key(store.NSSavedComparisons, userID)
	saved, err := loadList[SavedComparison](ctx, l.kv, key)
	if err != nil {
		return nil, err
	}

	now := l.now().UnixMilli()
	entry := SavedComparison{
		ID:        strconv.FormatInt(now, 10),
		Name:      name,
		Type:      ctype,
		Notes:     notes,
		Timestamp: now,
	}
	saved = append([]SavedComparison{entry}, saved...)

	if err := saveList(ctx, l.kv, key, saved); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteSaved removes a saved comparison by ID. Returns ErrNotFound when no
// entry has that ID.
func (l *Log) DeleteSaved(ctx context.Context, userID, id string) error {
	key := store.Key(store.NSSavedComparisons, userID)
	saved, err := loadList[SavedComparison](ctx, l.kv, key)
	if err != nil {
		return err
	}

	kept := saved[:0]
	found := false
	for _, s := range saved {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return ErrNotFound
	}
	return saveList(ctx, l.kv, key, kept)
}

// ─── Comparison queue ────────────────────────────────────────────────────────

// Queue returns the employer names the user has marked for comparison,
// oldest first.
func (l *Log) Queue(ctx context.Context, userID string) ([]string, error) {
	return loadList[string](ctx, l.kv, store.Key(store.NSComparisonQueue, userID))
}

// AddToQueue appends an employer name to the comparison queue. A name
// already queued is left in place.
func (l *Log) AddToQueue(ctx context.Context, userID, name string) error {
	if name == "" {
		return &ValidationError{Msg: "employer name is required"}
	}
	key := store.Key(store.NSComparisonQueue, userID)
	queue, err := loadList[string](ctx, l.kv, key)
	if err != nil {
		return err
	}
	for _, q := range queue {
		if q == name {
			return nil
		}
	}
	return saveList(ctx, l.kv, key, append(queue, name))
}

// RemoveFromQueue removes a single employer name from the queue.
// Returns ErrNotFound when the name is not queued.
func (l *Log) RemoveFromQueue(ctx context.Context, userID, name string) error {
	key := store.Key(store.NSComparisonQueue, userID)
	queue, err := loadList[string](ctx, l.kv, key)
	if err != nil {
		return err
	}

	kept := queue[:0]
	found := false
	for _, q := range queue {
		if q == name {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return ErrNotFound
	}
	return saveList(ctx, l.kv, key, kept)
}

// ClearQueue empties the comparison queue.
func (l *Log) ClearQueue(ctx context.Context, userID string) error {
	return l.kv.Remove(ctx, store.Key(store.NSComparisonQueue, userID))
}

// ─── KV helpers ──────────────────────────────────────────────────────────────

// loadList reads and decodes a JSON list. A missing key yields an empty
// list; malformed stored JSON is logged and treated as empty rather than
// failing the caller.
func loadList[T any](ctx context.Context, kv store.KV, key string) ([]T, error) {
	raw, err := kv.Load(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		slog.Warn("discarding malformed stored list", "key", key, "err", err)
		return nil, nil
	}
	return list, nil
}

func saveList[T any](ctx context.Context, kv store.KV, key string, list []T) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := kv.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
