package models

import dErrors "vouch/pkg/domain-errors"

// Status is the lifecycle stage of a verification submission.
//
// Transitions:
//
//	none     --submit-->  pending
//	pending  --approve--> approved (terminal)
//	pending  --reject-->  rejected
//	rejected --resubmit-> pending
type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// validTransitions is the single source of truth for the status lifecycle.
var validTransitions = map[Status][]Status{
	StatusNone:     {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected},
	StatusRejected: {StatusPending},
	StatusApproved: {},
}

// ParseStatus constructs a Status from external input (store rows, requests).
//
// Errors: returns CodeInvalidInput when the value is not a known status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	switch status {
	case StatusNone, StatusPending, StatusApproved, StatusRejected:
		return status, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid verification status")
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s Status) String() string {
	return string(s)
}
