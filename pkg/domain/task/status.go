package task

import (
	"encoding/json"
	"fmt"
)

// validTransitions defines the allowed lifecycle transitions and their events.
// Map: currentStatus -> event -> targetStatus
//
// "apply" is accepted from every status: applying more operations to a
// committed or undone task reopens it.
var validTransitions = map[Status]map[string]Status{
	StatusPending: {
		"apply": StatusApplied,
	},
	StatusApplied: {
		"apply":  StatusApplied,
		"commit": StatusCommitted,
		"undo":   StatusUndone,
	},
	StatusCommitted: {
		"apply": StatusApplied,
	},
	StatusUndone: {
		"apply": StatusApplied,
	},
}

// AllStatuses returns all valid task statuses.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusApplied,
		StatusCommitted,
		StatusUndone,
	}
}

// IsValid returns true if the status is a valid task status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusCommitted, StatusUndone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo returns true if a transition from the current status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, t := range transitions {
		if t == target {
			return true
		}
	}
	return false
}

// CanTransitionWith returns true if the given event can trigger a transition from this status.
func (s Status) CanTransitionWith(event string) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}

	_, ok = transitions[event]
	return ok
}

// TransitionWith returns the target status for a given event, or an error if not allowed.
func (s Status) TransitionWith(event string) (Status, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for status: %s", s)
	}

	target, ok := transitions[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from status '%s'", event, s)
	}

	return target, nil
}

// ValidEvents returns all valid events that can be triggered from this status.
func (s Status) ValidEvents() []string {
	transitions, ok := validTransitions[s]
	if !ok {
		return nil
	}

	var events []string
	for event := range transitions {
		events = append(events, event)
	}
	return events
}

// transitionsToSelf reports whether the event maps the status back onto itself.
func (s Status) transitionsToSelf(event string) bool {
	target, ok := validTransitions[s][event]
	return ok && target == s
}

// IsPending returns true if no operations have been applied yet.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// IsApplied returns true if the task has uncommitted applied operations.
func (s Status) IsApplied() bool {
	return s == StatusApplied
}

// IsCommitted returns true if the task's changes were committed to version control.
func (s Status) IsCommitted() bool {
	return s == StatusCommitted
}

// IsUndone returns true if the task's changes were discarded.
func (s Status) IsUndone() bool {
	return s == StatusUndone
}

// DisplayName returns a human-readable display name for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApplied:
		return "Applied"
	case StatusCommitted:
		return "Committed"
	case StatusUndone:
		return "Undone"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}

// MustParseStatus parses a string into a Status, panicking on error.
func MustParseStatus(s string) Status {
	status, err := ParseStatus(s)
	if err != nil {
		panic(err)
	}
	return status
}

// MarshalJSON implements json.Marshaler interface.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as pending for records written before the
	// status field existed.
	if str == "" {
		*s = StatusPending
		return nil
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid task status: %s", str)
	}

	*s = status
	return nil
}
