package application

import (
	"context"
	"time"

	"github.com/example/mentorship-scheduler/internal/scheduler"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_stores.go github.com/example/mentorship-scheduler/internal/application SessionStore,AttendanceStore

// SessionStore persists groups, their recurrence rules and the sessions
// materialised from them.
type SessionStore interface {
	CreateGroup(ctx context.Context, spec GroupSpec) (Group, error)
	GetGroup(ctx context.Context, groupID string) (Group, error)
	AddRecurrenceRule(ctx context.Context, groupID string, spec RuleSpec) (Group, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	GetSession(ctx context.Context, projectID, groupID, sessionID string) (Session, error)
	// SetOutcome records an outcome on a pending session.
	SetOutcome(ctx context.Context, projectID, groupID, sessionID string, outcome scheduler.Outcome, notes *string) (Session, error)
	// MarkAttendanceGenerated claims the session for attendance generation. A
	// session claimed earlier yields persistence.ErrConflict.
	MarkAttendanceGenerated(ctx context.Context, sessionID string) error
	ClearAttendanceGenerated(ctx context.Context, sessionID string) error
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	ListAttendanceRecords(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)
	GetAttendanceRecord(ctx context.Context, id string) (AttendanceRecord, error)
	CreateAttendanceRecord(ctx context.Context, record AttendanceRecord) error
	// ConfirmAttendanceRecord is idempotent: confirming twice keeps the first
	// confirmation.
	ConfirmAttendanceRecord(ctx context.Context, id, confirmedBy string, at time.Time) (AttendanceRecord, error)
}
