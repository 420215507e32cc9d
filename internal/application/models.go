package application

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/mentorship-scheduler/internal/recurrence"
	"github.com/example/mentorship-scheduler/internal/scheduler"
)

// GroupStatus is the lifecycle flag of a mentoring group.
type GroupStatus string

const (
	// GroupStatusActive marks a group whose sessions are being held.
	GroupStatusActive GroupStatus = "active"
	// GroupStatusInactive marks a retired group.
	GroupStatusInactive GroupStatus = "inactive"
)

// RuleSpec captures caller provided recurrence rule fields. Times are
// HH:MM or HH:MM:SS strings; dates are inclusive calendar days.
type RuleSpec struct {
	Weekday    recurrence.Weekday
	StartTime  string
	EndTime    string
	Location   string
	Mode       recurrence.Mode
	ValidFrom  time.Time
	ValidUntil time.Time
}

// GroupSpec is the flattened request for a single-rule group.
type GroupSpec struct {
	ProjectID string
	MentorID  string
	RuleSpec
}

// Rule is a stored weekly recurrence rule.
type Rule struct {
	ID         string
	GroupID    string
	Weekday    recurrence.Weekday
	StartTime  recurrence.Clock
	EndTime    recurrence.Clock
	Location   string
	Mode       recurrence.Mode
	ValidFrom  time.Time
	ValidUntil time.Time
	CreatedAt  time.Time
}

// Group represents a mentoring group and its rules in creation order.
type Group struct {
	ID           string
	ProjectID    string
	MentorID     string
	Status       GroupStatus
	Rules        []Rule
	SessionCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is one dated occurrence of a group meeting.
type Session struct {
	ID                  string
	GroupID             string
	RuleID              string
	ProjectID           string
	MentorID            string
	Date                time.Time
	StartTime           recurrence.Clock
	EndTime             recurrence.Clock
	Location            string
	Mode                recurrence.Mode
	Outcome             scheduler.Outcome
	OutcomeNotes        *string
	AttendanceGenerated bool
	// Status and Terminal are derived from Outcome when the session is
	// returned by SessionService.
	Status    scheduler.Status
	Terminal  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Hours returns the session length in hours including minutes.
func (s Session) Hours() float64 {
	return float64(s.EndTime.Seconds()-s.StartTime.Seconds()) / 3600
}

func (s Session) schedulerSession() scheduler.Session {
	return scheduler.Session{Date: s.Date, Outcome: s.Outcome}
}

func (s *Session) resolve(now time.Time) {
	s.Status = scheduler.Resolve(s.schedulerSession(), now)
	s.Terminal = scheduler.IsTerminal(s.schedulerSession(), now)
}

// SessionRef addresses a session through its owning project and group.
type SessionRef struct {
	ProjectID string
	GroupID   string
	SessionID string
}

// SessionFilter narrows session listings. Zero values are ignored.
type SessionFilter struct {
	IDs       []string
	GroupID   string
	ProjectID string
	From      *time.Time
	To        *time.Time
	// AttendancePendingThrough selects sessions up to the given day whose
	// attendance has not been generated.
	AttendancePendingThrough *time.Time
}

// AttendanceRecord is a logged block of mentoring hours.
type AttendanceRecord struct {
	ID          string
	SessionID   *string
	MentorID    string
	ProjectID   string
	Hours       float64
	IsConfirmed bool
	ConfirmedBy *string
	ConfirmedAt *time.Time
	Date        time.Time
	CreatedAt   time.Time
}

// AttendanceFilter narrows attendance listings. Zero values are ignored.
type AttendanceFilter struct {
	MentorID  string
	ProjectID string
	SessionID string
	Confirmed *bool
	From      *time.Time
	To        *time.Time
}

// LogHoursInput captures a manual hour entry.
type LogHoursInput struct {
	SessionID *string
	MentorID  string
	ProjectID string
	Hours     float64
	Date      time.Time
}

// SweepResult reports what an attendance sweep did.
type SweepResult struct {
	Created []AttendanceRecord
	// Skipped counts sessions flagged without a record: cancelled, missed or
	// already covered by an existing record.
	Skipped int
}

// BatchOutcome classifies the result of a batch creation.
type BatchOutcome string

const (
	// BatchSucceeded means every weekday produced a group.
	BatchSucceeded BatchOutcome = "succeeded"
	// BatchPartial means some weekdays failed while others succeeded.
	BatchPartial BatchOutcome = "partial"
	// BatchFailed means no group was created.
	BatchFailed BatchOutcome = "failed"
)

// BatchResult collects per-weekday results of CreateForDays. Groups created
// before a failure stay persisted.
type BatchResult struct {
	Created []Group
	Errors  map[recurrence.Weekday]error
}

// Outcome classifies the batch.
func (r BatchResult) Outcome() BatchOutcome {
	switch {
	case len(r.Errors) == 0:
		return BatchSucceeded
	case len(r.Created) == 0:
		return BatchFailed
	default:
		return BatchPartial
	}
}

// FailedDays returns the weekdays that failed in ascending order.
func (r BatchResult) FailedDays() []recurrence.Weekday {
	days := make([]recurrence.Weekday, 0, len(r.Errors))
	for day := range r.Errors {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Summary renders the operator facing message for the batch.
func (r BatchResult) Summary() string {
	total := len(r.Created) + len(r.Errors)
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d groups created", len(r.Created), total)
	for _, day := range r.FailedDays() {
		fmt.Fprintf(&b, "; %s: %v", day, r.Errors[day])
	}
	return b.String()
}
