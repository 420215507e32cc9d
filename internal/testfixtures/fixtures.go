package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/recurrence"
)

var (
	groupCounter      uint64
	attendanceCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Group fixtures -----------------------------

// GroupFixture represents a deterministic single-rule group that can be
// materialised for application or persistence tests. The default is a Tuesday
// 08:00-10:00 group valid through January 2024.
type GroupFixture struct {
	ID         string
	ProjectID  string
	MentorID   string
	Weekday    recurrence.Weekday
	StartTime  string
	EndTime    string
	Location   string
	Mode       recurrence.Mode
	ValidFrom  time.Time
	ValidUntil time.Time
}

// GroupOption configures the generated group fixture.
type GroupOption func(*GroupFixture)

// NewGroupFixture returns a deterministic group fixture with optional overrides.
func NewGroupFixture(opts ...GroupOption) GroupFixture {
	idx := atomic.AddUint64(&groupCounter, 1)
	fixture := GroupFixture{
		ID:         fmt.Sprintf("group-%03d", idx),
		ProjectID:  "project-001",
		MentorID:   fmt.Sprintf("mentor-%03d", idx),
		Weekday:    recurrence.Tuesday,
		StartTime:  "08:00",
		EndTime:    "10:00",
		Location:   "Library, room 2",
		Mode:       recurrence.ModeInPerson,
		ValidFrom:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithGroupID overrides the generated group ID.
func WithGroupID(id string) GroupOption {
	return func(f *GroupFixture) {
		f.ID = id
	}
}

// WithGroupProject overrides the owning project.
func WithGroupProject(projectID string) GroupOption {
	return func(f *GroupFixture) {
		f.ProjectID = projectID
	}
}

// WithGroupMentor overrides the mentor.
func WithGroupMentor(mentorID string) GroupOption {
	return func(f *GroupFixture) {
		f.MentorID = mentorID
	}
}

// WithGroupWeekday overrides the rule weekday.
func WithGroupWeekday(weekday recurrence.Weekday) GroupOption {
	return func(f *GroupFixture) {
		f.Weekday = weekday
	}
}

// WithGroupTimes overrides the rule start and end times.
func WithGroupTimes(start, end string) GroupOption {
	return func(f *GroupFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithGroupValidity overrides the rule validity window.
func WithGroupValidity(from, until time.Time) GroupOption {
	return func(f *GroupFixture) {
		f.ValidFrom = from
		f.ValidUntil = until
	}
}

// WithGroupMode overrides the delivery mode and location.
func WithGroupMode(mode recurrence.Mode, location string) GroupOption {
	return func(f *GroupFixture) {
		f.Mode = mode
		f.Location = location
	}
}

// RuleSpec returns the fixture's rule as an application.RuleSpec.
func (f GroupFixture) RuleSpec() application.RuleSpec {
	return application.RuleSpec{
		Weekday:    f.Weekday,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Location:   f.Location,
		Mode:       f.Mode,
		ValidFrom:  f.ValidFrom,
		ValidUntil: f.ValidUntil,
	}
}

// Spec returns the fixture as an application.GroupSpec.
func (f GroupFixture) Spec() application.GroupSpec {
	return application.GroupSpec{
		ProjectID: f.ProjectID,
		MentorID:  f.MentorID,
		RuleSpec:  f.RuleSpec(),
	}
}

// Persistence returns the fixture as a persistence.Group with one rule.
func (f GroupFixture) Persistence() persistence.Group {
	return persistence.Group{
		ID:        f.ID,
		ProjectID: f.ProjectID,
		MentorID:  f.MentorID,
		Rules: []persistence.RecurrenceRule{{
			Weekday:    int(f.Weekday),
			StartTime:  f.StartTime,
			EndTime:    f.EndTime,
			Location:   f.Location,
			Mode:       string(f.Mode),
			ValidFrom:  f.ValidFrom,
			ValidUntil: f.ValidUntil,
		}},
	}
}

// ExpectedDates lists the session dates the fixture's rule expands to.
func (f GroupFixture) ExpectedDates() []string {
	sessions := recurrence.Expand(recurrence.Rule{
		Weekday:    f.Weekday,
		StartTime:  recurrence.MustParseClock(f.StartTime),
		EndTime:    recurrence.MustParseClock(f.EndTime),
		ValidFrom:  f.ValidFrom,
		ValidUntil: f.ValidUntil,
	})
	dates := make([]string, len(sessions))
	for i, session := range sessions {
		dates[i] = session.Date.Format(recurrence.DateLayout)
	}
	return dates
}

// --------------------------- Attendance fixtures ---------------------------

// AttendanceFixture represents a deterministic attendance record.
type AttendanceFixture struct {
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

// AttendanceOption configures the generated attendance fixture.
type AttendanceOption func(*AttendanceFixture)

// NewAttendanceFixture returns a deterministic unconfirmed record with
// optional overrides.
func NewAttendanceFixture(opts ...AttendanceOption) AttendanceFixture {
	idx := atomic.AddUint64(&attendanceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AttendanceFixture{
		ID:        fmt.Sprintf("attendance-%03d", idx),
		MentorID:  "mentor-001",
		ProjectID: "project-001",
		Hours:     2,
		Date:      recurrence.Day(referenceTime),
		CreatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAttendanceID overrides the generated record ID.
func WithAttendanceID(id string) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.ID = id
	}
}

// WithAttendanceSession links the record to a session.
func WithAttendanceSession(sessionID string) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.SessionID = &sessionID
	}
}

// WithAttendanceOwner overrides the mentor and project.
func WithAttendanceOwner(mentorID, projectID string) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.MentorID = mentorID
		f.ProjectID = projectID
	}
}

// WithAttendanceHours overrides the logged hours.
func WithAttendanceHours(hours float64) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.Hours = hours
	}
}

// WithAttendanceDate overrides the record date.
func WithAttendanceDate(date time.Time) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.Date = recurrence.Day(date)
	}
}

// WithAttendanceConfirmed marks the record confirmed by the given user.
func WithAttendanceConfirmed(by string, at time.Time) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.IsConfirmed = true
		f.ConfirmedBy = &by
		f.ConfirmedAt = &at
	}
}

// Application returns the fixture as an application.AttendanceRecord.
func (f AttendanceFixture) Application() application.AttendanceRecord {
	return application.AttendanceRecord{
		ID:          f.ID,
		SessionID:   f.SessionID,
		MentorID:    f.MentorID,
		ProjectID:   f.ProjectID,
		Hours:       f.Hours,
		IsConfirmed: f.IsConfirmed,
		ConfirmedBy: f.ConfirmedBy,
		ConfirmedAt: f.ConfirmedAt,
		Date:        f.Date,
		CreatedAt:   f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.AttendanceRecord.
func (f AttendanceFixture) Persistence() persistence.AttendanceRecord {
	return persistence.AttendanceRecord(f.Application())
}
