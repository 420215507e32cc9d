package persistence

import (
	"context"
	"time"
)

// GroupRepository stores groups together with their recurrence rules. Creating
// a group or appending a rule also materialises the rule's sessions.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group Group) (Group, error)
	GetGroup(ctx context.Context, id string) (Group, error)
	AppendRule(ctx context.Context, groupID string, rule RecurrenceRule) (Group, error)
}

// SessionFilter narrows session queries. Zero values are ignored.
type SessionFilter struct {
	IDs       []string
	GroupID   string
	ProjectID string
	From      *time.Time
	To        *time.Time
	// AttendancePendingThrough selects sessions dated on or before the given
	// day whose attendance has not been generated yet.
	AttendancePendingThrough *time.Time
}

// SessionRepository reads sessions and records their outcomes.
type SessionRepository interface {
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	// UpdateOutcome sets the outcome only while the stored outcome still equals
	// expected and returns ErrConflict otherwise.
	UpdateOutcome(ctx context.Context, id, expected, outcome string, notes *string, updatedAt time.Time) (Session, error)
	// MarkAttendanceGenerated claims the session for attendance generation and
	// returns ErrConflict when it was already claimed.
	MarkAttendanceGenerated(ctx context.Context, id string, updatedAt time.Time) error
	ClearAttendanceGenerated(ctx context.Context, id string, updatedAt time.Time) error
}

// AttendanceFilter narrows attendance queries. Zero values are ignored.
type AttendanceFilter struct {
	MentorID  string
	ProjectID string
	SessionID string
	Confirmed *bool
	From      *time.Time
	To        *time.Time
}

// AttendanceRepository stores attendance records. Confirmation is idempotent.
type AttendanceRepository interface {
	CreateAttendanceRecord(ctx context.Context, record AttendanceRecord) error
	GetAttendanceRecord(ctx context.Context, id string) (AttendanceRecord, error)
	ListAttendanceRecords(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)
	ConfirmAttendanceRecord(ctx context.Context, id, confirmedBy string, at time.Time) (AttendanceRecord, error)
}

// Matches reports whether the record satisfies the filter. Backends without a
// query language use it to filter in process.
func (f AttendanceFilter) Matches(record AttendanceRecord) bool {
	if f.MentorID != "" && record.MentorID != f.MentorID {
		return false
	}
	if f.ProjectID != "" && record.ProjectID != f.ProjectID {
		return false
	}
	if f.SessionID != "" && (record.SessionID == nil || *record.SessionID != f.SessionID) {
		return false
	}
	if f.Confirmed != nil && record.IsConfirmed != *f.Confirmed {
		return false
	}
	if f.From != nil && record.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && record.Date.After(*f.To) {
		return false
	}
	return true
}
