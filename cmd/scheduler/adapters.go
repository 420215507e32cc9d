package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/recurrence"
	"github.com/example/mentorship-scheduler/internal/scheduler"
)

type sessionStoreAdapter struct {
	groups      persistence.GroupRepository
	sessions    persistence.SessionRepository
	idGenerator func() string
	now         func() time.Time
}

func newSessionStoreAdapter(groups persistence.GroupRepository, sessions persistence.SessionRepository, idGenerator func() string, now func() time.Time) *sessionStoreAdapter {
	return &sessionStoreAdapter{groups: groups, sessions: sessions, idGenerator: idGenerator, now: now}
}

func (a *sessionStoreAdapter) CreateGroup(ctx context.Context, spec application.GroupSpec) (application.Group, error) {
	stored, err := a.groups.CreateGroup(ctx, persistence.Group{
		ID:        a.idGenerator(),
		ProjectID: spec.ProjectID,
		MentorID:  spec.MentorID,
		Status:    string(application.GroupStatusActive),
		Rules:     []persistence.RecurrenceRule{toPersistenceRule(spec.RuleSpec)},
	})
	if err != nil {
		return application.Group{}, err
	}
	return toApplicationGroup(stored)
}

func (a *sessionStoreAdapter) GetGroup(ctx context.Context, groupID string) (application.Group, error) {
	stored, err := a.groups.GetGroup(ctx, groupID)
	if err != nil {
		return application.Group{}, err
	}
	return toApplicationGroup(stored)
}

func (a *sessionStoreAdapter) AddRecurrenceRule(ctx context.Context, groupID string, spec application.RuleSpec) (application.Group, error) {
	stored, err := a.groups.AppendRule(ctx, groupID, toPersistenceRule(spec))
	if err != nil {
		return application.Group{}, err
	}
	return toApplicationGroup(stored)
}

func (a *sessionStoreAdapter) ListSessions(ctx context.Context, filter application.SessionFilter) ([]application.Session, error) {
	models, err := a.sessions.ListSessions(ctx, persistence.SessionFilter(filter))
	if err != nil {
		return nil, err
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		session, err := toApplicationSession(model)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (a *sessionStoreAdapter) GetSession(ctx context.Context, projectID, groupID, sessionID string) (application.Session, error) {
	stored, err := a.ownedSession(ctx, projectID, groupID, sessionID)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored)
}

func (a *sessionStoreAdapter) SetOutcome(ctx context.Context, projectID, groupID, sessionID string, outcome scheduler.Outcome, notes *string) (application.Session, error) {
	if _, err := a.ownedSession(ctx, projectID, groupID, sessionID); err != nil {
		return application.Session{}, err
	}
	stored, err := a.sessions.UpdateOutcome(ctx, sessionID, string(scheduler.OutcomeUnset), string(outcome), notes, a.now().UTC())
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored)
}

func (a *sessionStoreAdapter) MarkAttendanceGenerated(ctx context.Context, sessionID string) error {
	return a.sessions.MarkAttendanceGenerated(ctx, sessionID, a.now().UTC())
}

func (a *sessionStoreAdapter) ClearAttendanceGenerated(ctx context.Context, sessionID string) error {
	return a.sessions.ClearAttendanceGenerated(ctx, sessionID, a.now().UTC())
}

// ownedSession loads a session and hides it unless it belongs to the given
// project and group.
func (a *sessionStoreAdapter) ownedSession(ctx context.Context, projectID, groupID, sessionID string) (persistence.Session, error) {
	stored, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return persistence.Session{}, err
	}
	if stored.ProjectID != projectID || stored.GroupID != groupID {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return stored, nil
}

type attendanceStoreAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceStoreAdapter(repo persistence.AttendanceRepository) *attendanceStoreAdapter {
	return &attendanceStoreAdapter{repo: repo}
}

func (a *attendanceStoreAdapter) ListAttendanceRecords(ctx context.Context, filter application.AttendanceFilter) ([]application.AttendanceRecord, error) {
	models, err := a.repo.ListAttendanceRecords(ctx, persistence.AttendanceFilter(filter))
	if err != nil {
		return nil, err
	}
	records := make([]application.AttendanceRecord, 0, len(models))
	for _, model := range models {
		records = append(records, application.AttendanceRecord(model))
	}
	return records, nil
}

func (a *attendanceStoreAdapter) GetAttendanceRecord(ctx context.Context, id string) (application.AttendanceRecord, error) {
	stored, err := a.repo.GetAttendanceRecord(ctx, id)
	if err != nil {
		return application.AttendanceRecord{}, err
	}
	return application.AttendanceRecord(stored), nil
}

func (a *attendanceStoreAdapter) CreateAttendanceRecord(ctx context.Context, record application.AttendanceRecord) error {
	return a.repo.CreateAttendanceRecord(ctx, persistence.AttendanceRecord(record))
}

func (a *attendanceStoreAdapter) ConfirmAttendanceRecord(ctx context.Context, id, confirmedBy string, at time.Time) (application.AttendanceRecord, error) {
	stored, err := a.repo.ConfirmAttendanceRecord(ctx, id, confirmedBy, at)
	if err != nil {
		return application.AttendanceRecord{}, err
	}
	return application.AttendanceRecord(stored), nil
}

func toPersistenceRule(spec application.RuleSpec) persistence.RecurrenceRule {
	return persistence.RecurrenceRule{
		Weekday:    int(spec.Weekday),
		StartTime:  spec.StartTime,
		EndTime:    spec.EndTime,
		Location:   spec.Location,
		Mode:       string(spec.Mode),
		ValidFrom:  spec.ValidFrom,
		ValidUntil: spec.ValidUntil,
	}
}

func toApplicationGroup(model persistence.Group) (application.Group, error) {
	group := application.Group{
		ID:           model.ID,
		ProjectID:    model.ProjectID,
		MentorID:     model.MentorID,
		Status:       application.GroupStatus(model.Status),
		SessionCount: model.SessionCount,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	for _, rule := range model.Rules {
		start, end, err := parseClocks(rule.StartTime, rule.EndTime)
		if err != nil {
			return application.Group{}, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		group.Rules = append(group.Rules, application.Rule{
			ID:         rule.ID,
			GroupID:    rule.GroupID,
			Weekday:    recurrence.Weekday(rule.Weekday),
			StartTime:  start,
			EndTime:    end,
			Location:   rule.Location,
			Mode:       recurrence.Mode(rule.Mode),
			ValidFrom:  rule.ValidFrom,
			ValidUntil: rule.ValidUntil,
			CreatedAt:  rule.CreatedAt,
		})
	}
	return group, nil
}

func toApplicationSession(model persistence.Session) (application.Session, error) {
	start, end, err := parseClocks(model.StartTime, model.EndTime)
	if err != nil {
		return application.Session{}, fmt.Errorf("session %s: %w", model.ID, err)
	}
	return application.Session{
		ID:                  model.ID,
		GroupID:             model.GroupID,
		RuleID:              model.RuleID,
		ProjectID:           model.ProjectID,
		MentorID:            model.MentorID,
		Date:                model.Date,
		StartTime:           start,
		EndTime:             end,
		Location:            model.Location,
		Mode:                recurrence.Mode(model.Mode),
		Outcome:             scheduler.Outcome(model.Outcome),
		OutcomeNotes:        model.OutcomeNotes,
		AttendanceGenerated: model.AttendanceGenerated,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}, nil
}

func parseClocks(startValue, endValue string) (recurrence.Clock, recurrence.Clock, error) {
	start, err := recurrence.ParseClock(startValue)
	if err != nil {
		return recurrence.Clock{}, recurrence.Clock{}, err
	}
	end, err := recurrence.ParseClock(endValue)
	if err != nil {
		return recurrence.Clock{}, recurrence.Clock{}, err
	}
	return start, end, nil
}
