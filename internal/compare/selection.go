// Selection state machine for the comparison slots.
//
// Phase graph:
//
//	Idle ──RunComparison (slots filled)──► ResultsShown
//	  ▲                                        │
//	  └───────────────Reset────────────────────┘
//
// Slots 1 and 2 are always active; slot 3 only while 3-way mode is on.
package compare

import (
	"context"
	"errors"
	"fmt"
)

// Phase is the selection lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseResults Phase = "RESULTS_SHOWN"
)

// ErrAllSlotsFilled signals that queue auto-fill found no slot to fill.
var ErrAllSlotsFilled = errors.New("all comparison slots are filled")

// ErrDuplicateEntity signals that an entity already occupies another slot.
var ErrDuplicateEntity = errors.New("entity already selected in another slot")

// Selection tracks which entities occupy the comparison slots.
// The zero value is not usable; construct with NewSelection.
type Selection struct {
	ctype    ComparisonType
	slots    [3]string
	threeWay bool
	phase    Phase
}

// NewSelection returns an empty Idle selection of the given type.
func NewSelection(ctype ComparisonType) *Selection {
	return &Selection{ctype: ctype, phase: PhaseIdle}
}

// Type returns the active comparison type.
func (s *Selection) Type() ComparisonType { return s.ctype }

// Phase returns the current lifecycle phase.
func (s *Selection) Phase() Phase { return s.phase }

// ThreeWay reports whether 3-way mode is enabled.
func (s *Selection) ThreeWay() bool { return s.threeWay }

// Entity returns the value in slot (1-based), or "" when empty or out of range.
func (s *Selection) Entity(slot int) string {
	if slot < 1 || slot > 3 {
		return ""
	}
	return s.slots[slot-1]
}

// SetEntity assigns value to slot (1-based). Assigning a value already held
// by another active slot is rejected silently, since the client filters candidate
// lists per slot, so a duplicate is never an error, just a no-op. An empty
// value clears the slot.
func (s *Selection) SetEntity(slot int, value string) error {
	if slot < 1 || slot > 3 || (slot == 3 && !s.threeWay) {
		return &ValidationError{Msg: fmt.Sprintf("slot %d is not active", slot)}
	}
	if value != "" {
		for i, held := range s.slots {
			if i != slot-1 && held == value && s.slotActive(i+1) {
				return nil // silent reject: exclusivity
			}
		}
	}
	s.slots[slot-1] = value
	return nil
}

// SetType changes the comparison type, clearing all slot values. The 3-way
// enablement is preserved.
func (s *Selection) SetType(ctype ComparisonType) {
	s.ctype = ctype
	s.slots = [3]string{}
	s.phase = PhaseIdle
}

// ToggleThreeWay enables or disables the third slot. Disabling clears slot 3
// immediately; slots 1 and 2 are untouched.
func (s *Selection) ToggleThreeWay(enabled bool) {
	s.threeWay = enabled
	if !enabled {
		s.slots[2] = ""
	}
}

// AutoFillFromQueue places an entity from the comparison queue into a slot.
//
// Fill priority: slot 1 if empty, else slot 2 if empty, else slot 3 if 3-way
// is enabled and it is empty. With 3-way disabled and both slots taken,
// slot 2 is overwritten (slot 1 is the anchor of the comparison). With 3-way
// enabled and all three taken, nothing changes and ErrAllSlotsFilled is
// returned.
//
// Returns the 1-based slot that received the value.
func (s *Selection) AutoFillFromQueue(value string) (int, error) {
	for i, held := range s.slots {
		if held == value && s.slotActive(i+1) {
			return 0, ErrDuplicateEntity
		}
	}
	switch {
	case s.slots[0] == "":
		s.slots[0] = value
		return 1, nil
	case s.slots[1] == "":
		s.slots[1] = value
		return 2, nil
	case s.threeWay && s.slots[2] == "":
		s.slots[2] = value
		return 3, nil
	case !s.threeWay:
		s.slots[1] = value
		return 2, nil
	}
	return 0, ErrAllSlotsFilled
}

// Reset clears all slots and returns to the Idle phase.
func (s *Selection) Reset() {
	s.slots = [3]string{}
	s.phase = PhaseIdle
}

// RunComparison validates that every active slot is filled, records the pair
// in the recent-comparisons log, and transitions to ResultsShown.
//
// The log write happens before the phase transition: if persisting the
// history entry fails the selection stays Idle, so there is never optimistic
// state to roll back.
func (s *Selection) RunComparison(ctx context.Context, log *Log, userID string) error {
	if s.slots[0] == "" || s.slots[1] == "" {
		return &ValidationError{Msg: "both comparison slots must be filled"}
	}
	if s.threeWay && s.slots[2] == "" {
		return &ValidationError{Msg: "third slot must be filled in 3-way mode"}
	}
	if err := log.RecordComparison(ctx, userID, s.slots[0], s.slots[1], s.ctype); err != nil {
		return fmt.Errorf("record comparison: %w", err)
	}
	s.phase = PhaseResults
	return nil
}

// slotActive reports whether the 1-based slot participates in the comparison.
func (s *Selection) slotActive(slot int) bool {
	return slot == 1 || slot == 2 || (slot == 3 && s.threeWay)
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
