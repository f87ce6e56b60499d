package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// minNOCLength is the shortest code worth resolving; partial codes typed
// mid-keystroke are ignored.
const minNOCLength = 4

// DefaultDebounce is the delay between the last keystroke and the lookup.
const DefaultDebounce = 500 * time.Millisecond

// TierLookup resolves a NOC code to its tier, nil when unknown.
type TierLookup func(ctx context.Context, code string) (*int, error)

// TierResolver debounces NOC→tier lookups: each SetCode supersedes any
// pending lookup, and only the last code within the debounce window is
// resolved. A generation counter guards against a stale lookup landing
// after a newer SetCode: latest request wins, not first response.
//
// A lookup that returns nothing keeps the last resolved tier; the form
// should not lose a known tier because the user mistyped one character.
type TierResolver struct {
	mu      sync.Mutex
	lookup  TierLookup
	delay   time.Duration
	gen     uint64
	pending *time.Timer
	tier    *int
}

// NewTierResolver returns a resolver with the given debounce delay;
// delay <= 0 means DefaultDebounce.
func NewTierResolver(lookup TierLookup, delay time.Duration) *TierResolver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &TierResolver{lookup: lookup, delay: delay}
}

// SetCode schedules a debounced lookup for code. Codes shorter than
// minNOCLength cancel any pending lookup without scheduling a new one.
func (r *TierResolver) SetCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	if len(code) < minNOCLength {
		return
	}

	gen := r.gen
	r.pending = time.AfterFunc(r.delay, func() {
		r.resolve(gen, code)
	})
}

// Tier returns the last successfully resolved tier, nil when none yet.
func (r *TierResolver) Tier() *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tier
}

func (r *TierResolver) resolve(gen uint64, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tier, err := r.lookup(ctx, code)
	if err != nil {
		slog.Warn("NOC tier lookup failed", "code", code, "err", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return // superseded by a newer keystroke
	}
	if tier != nil {
		r.tier = tier
	}
}
