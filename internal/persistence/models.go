package persistence

import "time"

// Group is a mentoring group owned by a project.
type Group struct {
	ID        string
	ProjectID string
	MentorID  string
	Status    string
	Rules     []RecurrenceRule
	// SessionCount is filled on reads with the number of stored sessions.
	SessionCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecurrenceRule is a weekly schedule attached to a group. Position records
// creation order within the group.
type RecurrenceRule struct {
	ID         string
	GroupID    string
	Position   int
	Weekday    int
	StartTime  string
	EndTime    string
	Location   string
	Mode       string
	ValidFrom  time.Time
	ValidUntil time.Time
	CreatedAt  time.Time
}

// Session is a dated occurrence materialised from a recurrence rule.
type Session struct {
	ID                  string
	GroupID             string
	RuleID              string
	ProjectID           string
	MentorID            string
	Date                time.Time
	StartTime           string
	EndTime             string
	Location            string
	Mode                string
	Outcome             string
	OutcomeNotes        *string
	AttendanceGenerated bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AttendanceRecord is a block of mentor hours, optionally tied to a session.
type AttendanceRecord struct {
	ID          string     `json:"id"`
	SessionID   *string    `json:"session_id,omitempty"`
	MentorID    string     `json:"mentor_id"`
	ProjectID   string     `json:"project_id"`
	Hours       float64    `json:"hours"`
	IsConfirmed bool       `json:"is_confirmed"`
	ConfirmedBy *string    `json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	Date        time.Time  `json:"date"`
	CreatedAt   time.Time  `json:"created_at"`
}
