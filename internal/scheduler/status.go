package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/mentorship-scheduler/internal/recurrence"
)

// Outcome is the recorded result of a session. The zero value means no
// outcome has been recorded yet.
type Outcome string

const (
	OutcomeUnset        Outcome = ""
	OutcomeCompleted    Outcome = "completed"
	OutcomeCancelled    Outcome = "cancelled"
	OutcomeMissedMentor Outcome = "missed-mentor"
)

// Valid reports whether the outcome is one of the known values.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeUnset, OutcomeCompleted, OutcomeCancelled, OutcomeMissedMentor:
		return true
	}
	return false
}

// Status is the lifecycle state derived from a session's outcome.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusCompleted, StatusMissed, StatusCancelled}

// Session carries the fields status resolution depends on.
type Session struct {
	Date    time.Time
	Outcome Outcome
}

// Resolve derives the status of a session. An unset outcome is pending no
// matter how far in the past the session date lies; now never changes the
// result.
func Resolve(session Session, now time.Time) Status {
	_ = now
	switch session.Outcome {
	case OutcomeCompleted:
		return StatusCompleted
	case OutcomeMissedMentor:
		return StatusMissed
	case OutcomeCancelled:
		return StatusCancelled
	default:
		return StatusPending
	}
}

// IsTerminal reports whether the session is completed or missed and dated
// before the calendar day of now, taken as recurrence.Day does.
func IsTerminal(session Session, now time.Time) bool {
	switch Resolve(session, now) {
	case StatusCompleted, StatusMissed:
		return session.Date.Before(recurrence.Day(now))
	}
	return false
}

// Action is an operator request that records an outcome.
type Action string

const (
	ActionComplete Action = "complete"
	ActionMiss     Action = "miss"
	ActionCancel   Action = "cancel"
)

// ErrInvalidTransition indicates the action is not permitted from the
// session's current status.
var ErrInvalidTransition = errors.New("scheduler: invalid status transition")

// ErrUnknownAction indicates an action outside the supported set.
var ErrUnknownAction = errors.New("scheduler: unknown action")

// CheckTransition validates the action against the session's current status
// and returns the outcome to record. Every action requires a pending session.
func CheckTransition(session Session, action Action, now time.Time) (Outcome, error) {
	var target Outcome
	switch action {
	case ActionComplete:
		target = OutcomeCompleted
	case ActionMiss:
		target = OutcomeMissedMentor
	case ActionCancel:
		target = OutcomeCancelled
	default:
		return OutcomeUnset, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if current := Resolve(session, now); current != StatusPending {
		return OutcomeUnset, fmt.Errorf("%w: cannot %s a %s session", ErrInvalidTransition, action, current)
	}
	return target, nil
}
