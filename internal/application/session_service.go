package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/mentorship-scheduler/internal/scheduler"
)

// SessionService lists sessions with their resolved status and records
// outcomes.
type SessionService struct {
	store     SessionStore
	now       func() time.Time
	logger    *slog.Logger
	onOutcome []func(Session)
}

// NewSessionService wires dependencies for session operations.
func NewSessionService(store SessionStore, now func() time.Time) *SessionService {
	return NewSessionServiceWithLogger(store, now, nil)
}

// NewSessionServiceWithLogger wires dependencies with a specific logger.
func NewSessionServiceWithLogger(store SessionStore, now func() time.Time, logger *slog.Logger) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{store: store, now: now, logger: defaultLogger(logger)}
}

// OnOutcome registers fn to run after an outcome is recorded. Register hooks
// before the service handles requests.
func (s *SessionService) OnOutcome(fn func(Session)) {
	if s == nil || fn == nil {
		return
	}
	s.onOutcome = append(s.onOutcome, fn)
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// ListSessions returns sessions matching the filter ordered by date and start
// time, each carrying its resolved status.
func (s *SessionService) ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}

	vErr := &ValidationError{}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		vErr.add("to", "to must not be before from")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	sessions, err := s.store.ListSessions(ctx, filter)
	if err != nil {
		err = mapStoreError(err)
		s.loggerWith(ctx, "ListSessions").ErrorContext(ctx, "failed to list sessions", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	now := s.now()
	for i := range sessions {
		sessions[i].resolve(now)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.StartTime.Before(b.StartTime)
	})
	return sessions, nil
}

// MarkCompleted records that a pending session took place.
func (s *SessionService) MarkCompleted(ctx context.Context, ref SessionRef, notes *string) (Session, error) {
	return s.transition(ctx, "MarkCompleted", ref, scheduler.ActionComplete, notes)
}

// MarkMissed records that the mentor missed a pending session. The reason is
// optional.
func (s *SessionService) MarkMissed(ctx context.Context, ref SessionRef, reason *string) (Session, error) {
	return s.transition(ctx, "MarkMissed", ref, scheduler.ActionMiss, reason)
}

// CancelSession cancels a pending session.
func (s *SessionService) CancelSession(ctx context.Context, ref SessionRef, reason *string) (Session, error) {
	return s.transition(ctx, "CancelSession", ref, scheduler.ActionCancel, reason)
}

func (s *SessionService) transition(ctx context.Context, operation string, ref SessionRef, action scheduler.Action, notes *string) (session Session, err error) {
	if s == nil {
		return Session{}, fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, operation,
		"project_id", ref.ProjectID,
		"group_id", ref.GroupID,
		"session_id", ref.SessionID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record outcome", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("outcome", string(session.Outcome)).InfoContext(ctx, "outcome recorded")
	}()

	if vErr := validateSessionRef(ref); vErr.HasErrors() {
		return Session{}, vErr
	}
	notes = trimNotes(notes)

	current, err := s.store.GetSession(ctx, ref.ProjectID, ref.GroupID, ref.SessionID)
	if err != nil {
		return Session{}, mapStoreError(err)
	}

	now := s.now()
	outcome, err := scheduler.CheckTransition(current.schedulerSession(), action, now)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidTransition) {
			return Session{}, fmt.Errorf("%w: session %s is %s", ErrInvalidTransition, ref.SessionID, scheduler.Resolve(current.schedulerSession(), now))
		}
		return Session{}, err
	}

	session, err = s.store.SetOutcome(ctx, ref.ProjectID, ref.GroupID, ref.SessionID, outcome, notes)
	if err != nil {
		return Session{}, mapStoreError(err)
	}
	session.resolve(now)
	for _, fn := range s.onOutcome {
		fn(session)
	}
	return session, nil
}

func validateSessionRef(ref SessionRef) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(ref.ProjectID) == "" {
		vErr.add("project_id", "project is required")
	}
	if strings.TrimSpace(ref.GroupID) == "" {
		vErr.add("group_id", "group is required")
	}
	if strings.TrimSpace(ref.SessionID) == "" {
		vErr.add("session_id", "session is required")
	}
	return vErr
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
