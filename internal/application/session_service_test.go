package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/application/mocks"
	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/recurrence"
	"github.com/example/mentorship-scheduler/internal/scheduler"
)

type SessionServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockStore *mocks.MockSessionStore
	service   *application.SessionService
	ctx       context.Context
	testNow   time.Time
	ref       application.SessionRef
}

func (s *SessionServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockSessionStore(s.mockCtrl)
	s.testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.service = application.NewSessionServiceWithLogger(
		s.mockStore,
		func() time.Time { return s.testNow },
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	s.ctx = context.Background()
	s.ref = application.SessionRef{ProjectID: "project-1", GroupID: "group-1", SessionID: "session-1"}
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (s *SessionServiceTestSuite) session(id string, date time.Time, start string, outcome scheduler.Outcome) application.Session {
	return application.Session{
		ID:        id,
		GroupID:   "group-1",
		ProjectID: "project-1",
		Date:      date,
		StartTime: recurrence.MustParseClock(start),
		EndTime:   recurrence.MustParseClock("23:00"),
		Outcome:   outcome,
	}
}

func (s *SessionServiceTestSuite) TestListSessionsResolvesAndSorts() {
	jan1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	jun3 := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	s.mockStore.EXPECT().
		ListSessions(gomock.Any(), application.SessionFilter{GroupID: "group-1"}).
		Return([]application.Session{
			s.session("late", jun3, "16:00", scheduler.OutcomeCompleted),
			s.session("early", jun3, "08:00", scheduler.OutcomeUnset),
			s.session("old", jan1, "08:00", scheduler.OutcomeUnset),
			s.session("missed", jan1, "09:00", scheduler.OutcomeMissedMentor),
		}, nil)

	sessions, err := s.service.ListSessions(s.ctx, application.SessionFilter{GroupID: "group-1"})
	s.Require().NoError(err)

	ids := make([]string, len(sessions))
	statuses := make(map[string]scheduler.Status, len(sessions))
	var terminal []string
	for i, session := range sessions {
		ids[i] = session.ID
		statuses[session.ID] = session.Status
		if session.Terminal {
			terminal = append(terminal, session.ID)
		}
	}
	s.Equal([]string{"old", "missed", "early", "late"}, ids)
	s.Equal(scheduler.StatusPending, statuses["old"])
	s.Equal(scheduler.StatusMissed, statuses["missed"])
	s.Equal(scheduler.StatusPending, statuses["early"])
	s.Equal(scheduler.StatusCompleted, statuses["late"])
	// "late" is completed but dated after now.
	s.Equal([]string{"missed"}, terminal)
}

func (s *SessionServiceTestSuite) TestListSessionsRejectsInvertedRange() {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.service.ListSessions(s.ctx, application.SessionFilter{From: &from, To: &to})

	var vErr *application.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Contains(vErr.FieldErrors, "to")
}

func (s *SessionServiceTestSuite) TestMarkMissedRecordsReason() {
	pending := s.session("session-1", time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC), "08:00", scheduler.OutcomeUnset)
	reason := "  mentor ill  "

	updated := pending
	updated.Outcome = scheduler.OutcomeMissedMentor

	gomock.InOrder(
		s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(pending, nil),
		s.mockStore.EXPECT().
			SetOutcome(gomock.Any(), "project-1", "group-1", "session-1", scheduler.OutcomeMissedMentor, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, _ string, _ scheduler.Outcome, notes *string) (application.Session, error) {
				s.Require().NotNil(notes)
				s.Equal("mentor ill", *notes)
				updated.OutcomeNotes = notes
				return updated, nil
			}),
	)

	session, err := s.service.MarkMissed(s.ctx, s.ref, &reason)
	s.Require().NoError(err)
	s.Equal(scheduler.StatusMissed, session.Status)
}

func (s *SessionServiceTestSuite) TestMarkCompletedWithoutNotes() {
	pending := s.session("session-1", time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC), "08:00", scheduler.OutcomeUnset)
	updated := pending
	updated.Outcome = scheduler.OutcomeCompleted

	s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(pending, nil)
	s.mockStore.EXPECT().
		SetOutcome(gomock.Any(), "project-1", "group-1", "session-1", scheduler.OutcomeCompleted, (*string)(nil)).
		Return(updated, nil)

	session, err := s.service.MarkCompleted(s.ctx, s.ref, nil)
	s.Require().NoError(err)
	s.Equal(scheduler.StatusCompleted, session.Status)
}

func (s *SessionServiceTestSuite) TestOutcomeHooksRunAfterRecording() {
	pending := s.session("session-1", time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC), "08:00", scheduler.OutcomeUnset)
	updated := pending
	updated.Outcome = scheduler.OutcomeCancelled

	var seen []scheduler.Status
	s.service.OnOutcome(func(session application.Session) { seen = append(seen, session.Status) })

	s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(pending, nil)
	s.mockStore.EXPECT().
		SetOutcome(gomock.Any(), "project-1", "group-1", "session-1", scheduler.OutcomeCancelled, (*string)(nil)).
		Return(updated, nil)

	_, err := s.service.CancelSession(s.ctx, s.ref, nil)
	s.Require().NoError(err)
	s.Equal([]scheduler.Status{scheduler.StatusCancelled}, seen)

	s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(updated, nil)
	_, err = s.service.MarkCompleted(s.ctx, s.ref, nil)
	s.Require().ErrorIs(err, application.ErrInvalidTransition)
	s.Len(seen, 1)
}

func (s *SessionServiceTestSuite) TestTransitionsRequirePending() {
	for _, outcome := range []scheduler.Outcome{scheduler.OutcomeCompleted, scheduler.OutcomeMissedMentor, scheduler.OutcomeCancelled} {
		current := s.session("session-1", time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC), "08:00", outcome)
		s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(current, nil).Times(3)

		_, err := s.service.MarkCompleted(s.ctx, s.ref, nil)
		s.ErrorIs(err, application.ErrInvalidTransition)
		_, err = s.service.MarkMissed(s.ctx, s.ref, nil)
		s.ErrorIs(err, application.ErrInvalidTransition)
		_, err = s.service.CancelSession(s.ctx, s.ref, nil)
		s.ErrorIs(err, scheduler.ErrInvalidTransition)
	}
}

func (s *SessionServiceTestSuite) TestConcurrentOutcomeIsInvalidTransition() {
	pending := s.session("session-1", time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC), "08:00", scheduler.OutcomeUnset)

	s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(pending, nil)
	s.mockStore.EXPECT().
		SetOutcome(gomock.Any(), "project-1", "group-1", "session-1", scheduler.OutcomeCancelled, gomock.Any()).
		Return(application.Session{}, persistence.ErrConflict)

	_, err := s.service.CancelSession(s.ctx, s.ref, nil)
	s.ErrorIs(err, application.ErrInvalidTransition)
}

func (s *SessionServiceTestSuite) TestTransitionUnknownSession() {
	s.mockStore.EXPECT().GetSession(gomock.Any(), "project-1", "group-1", "session-1").Return(application.Session{}, persistence.ErrNotFound)

	_, err := s.service.MarkCompleted(s.ctx, s.ref, nil)
	s.ErrorIs(err, application.ErrNotFound)
}

func (s *SessionServiceTestSuite) TestTransitionValidatesRef() {
	_, err := s.service.MarkCompleted(s.ctx, application.SessionRef{GroupID: "group-1"}, nil)

	var vErr *application.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Contains(vErr.FieldErrors, "project_id")
	s.Contains(vErr.FieldErrors, "session_id")
	s.NotContains(vErr.FieldErrors, "group_id")
}
