package http

import (
	"time"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/recurrence"
)

type ruleDTO struct {
	ID         string `json:"id"`
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Location   string `json:"location"`
	Mode       string `json:"mode"`
	ValidFrom  string `json:"valid_from"`
	ValidUntil string `json:"valid_until"`
}

type groupDTO struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	MentorID     string    `json:"mentor_id"`
	Status       string    `json:"status"`
	SessionCount int       `json:"session_count"`
	Rules        []ruleDTO `json:"rules"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}

func toGroupDTO(group application.Group) groupDTO {
	rules := make([]ruleDTO, 0, len(group.Rules))
	for _, rule := range group.Rules {
		rules = append(rules, ruleDTO{
			ID:         rule.ID,
			Weekday:    int(rule.Weekday),
			StartTime:  rule.StartTime.String(),
			EndTime:    rule.EndTime.String(),
			Location:   rule.Location,
			Mode:       string(rule.Mode),
			ValidFrom:  formatDate(rule.ValidFrom),
			ValidUntil: formatDate(rule.ValidUntil),
		})
	}
	return groupDTO{
		ID:           group.ID,
		ProjectID:    group.ProjectID,
		MentorID:     group.MentorID,
		Status:       string(group.Status),
		SessionCount: group.SessionCount,
		Rules:        rules,
		CreatedAt:    formatTimestamp(group.CreatedAt),
		UpdatedAt:    formatTimestamp(group.UpdatedAt),
	}
}

type sessionDTO struct {
	ID                  string  `json:"id"`
	GroupID             string  `json:"group_id"`
	RuleID              string  `json:"rule_id"`
	ProjectID           string  `json:"project_id"`
	MentorID            string  `json:"mentor_id"`
	Date                string  `json:"date"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	Location            string  `json:"location"`
	Mode                string  `json:"mode"`
	Outcome             string  `json:"outcome,omitempty"`
	OutcomeNotes        *string `json:"outcome_notes,omitempty"`
	Status              string  `json:"status,omitempty"`
	Terminal            bool    `json:"terminal"`
	AttendanceGenerated bool    `json:"attendance_generated"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:                  session.ID,
		GroupID:             session.GroupID,
		RuleID:              session.RuleID,
		ProjectID:           session.ProjectID,
		MentorID:            session.MentorID,
		Date:                formatDate(session.Date),
		StartTime:           session.StartTime.String(),
		EndTime:             session.EndTime.String(),
		Location:            session.Location,
		Mode:                string(session.Mode),
		Outcome:             string(session.Outcome),
		OutcomeNotes:        session.OutcomeNotes,
		Status:              string(session.Status),
		Terminal:            session.Terminal,
		AttendanceGenerated: session.AttendanceGenerated,
	}
}

type attendanceDTO struct {
	ID          string  `json:"id"`
	SessionID   *string `json:"session_id,omitempty"`
	MentorID    string  `json:"mentor_id"`
	ProjectID   string  `json:"project_id"`
	Hours       float64 `json:"hours"`
	IsConfirmed bool    `json:"is_confirmed"`
	ConfirmedBy *string `json:"confirmed_by,omitempty"`
	ConfirmedAt *string `json:"confirmed_at,omitempty"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

func toAttendanceDTO(record application.AttendanceRecord) attendanceDTO {
	dto := attendanceDTO{
		ID:          record.ID,
		SessionID:   record.SessionID,
		MentorID:    record.MentorID,
		ProjectID:   record.ProjectID,
		Hours:       record.Hours,
		IsConfirmed: record.IsConfirmed,
		ConfirmedBy: record.ConfirmedBy,
		Date:        formatDate(record.Date),
		CreatedAt:   formatTimestamp(record.CreatedAt),
	}
	if record.ConfirmedAt != nil {
		at := formatTimestamp(*record.ConfirmedAt)
		dto.ConfirmedAt = &at
	}
	return dto
}

func toAttendanceDTOs(records []application.AttendanceRecord) []attendanceDTO {
	out := make([]attendanceDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toAttendanceDTO(record))
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(recurrence.DateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseDateField parses an optional YYYY-MM-DD value, reporting failures
// against field.
func parseDateField(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := recurrence.ParseDate(value)
	if err != nil {
		return nil, fieldError(field, "must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}
