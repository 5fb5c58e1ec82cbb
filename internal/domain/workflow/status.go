package workflow

// Status represents the lifecycle state of an expense request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether a transition from s to target is permitted.
// The only legal transitions are pending -> approved and pending -> rejected;
// terminal statuses never leave.
func (s Status) CanTransitionTo(target Status) bool {
	if s != StatusPending {
		return false
	}
	return target.IsTerminal()
}

// Validate checks that a transition from s to target is permitted and returns
// a classified error when it is not.
func (s Status) Validate(target Status) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if s.IsTerminal() {
		return ErrAlreadyDecided
	}
	if !s.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	return nil
}
