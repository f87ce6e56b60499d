package compare

import "sync"

// Sessions holds the per-user selection state. Each user owns an
// independent selection; Selection itself is not safe for concurrent use,
// so all access goes through Do, which serialises operations per registry.
type Sessions struct {
	mu     sync.Mutex
	byUser map[string]*Selection
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{byUser: make(map[string]*Selection)}
}

// Do runs fn against the user's selection, creating a fresh job-title
// selection on first use.
func (s *Sessions) Do(userID string, fn func(sel *Selection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.byUser[userID]
	if !ok {
		sel = NewSelection(TypeJobTitle)
		s.byUser[userID] = sel
	}
	return fn(sel)
}
