package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/recurrence"
	"github.com/example/mentorship-scheduler/internal/scheduler"
)

type capturingAttendanceStore struct {
	created []application.AttendanceRecord
}

func (c *capturingAttendanceStore) ListAttendanceRecords(ctx context.Context, filter application.AttendanceFilter) ([]application.AttendanceRecord, error) {
	return c.created, nil
}

func (c *capturingAttendanceStore) GetAttendanceRecord(ctx context.Context, id string) (application.AttendanceRecord, error) {
	return application.AttendanceRecord{}, application.ErrNotFound
}

func (c *capturingAttendanceStore) CreateAttendanceRecord(ctx context.Context, record application.AttendanceRecord) error {
	c.created = append(c.created, record)
	return nil
}

func (c *capturingAttendanceStore) ConfirmAttendanceRecord(ctx context.Context, id, confirmedBy string, at time.Time) (application.AttendanceRecord, error) {
	return application.AttendanceRecord{}, application.ErrNotFound
}

type capturingSessionStore struct {
	created application.GroupSpec
}

func (c *capturingSessionStore) CreateGroup(ctx context.Context, spec application.GroupSpec) (application.Group, error) {
	c.created = spec
	return application.Group{ID: "group-1", ProjectID: spec.ProjectID, MentorID: spec.MentorID}, nil
}

func (c *capturingSessionStore) GetGroup(ctx context.Context, groupID string) (application.Group, error) {
	return application.Group{}, application.ErrNotFound
}

func (c *capturingSessionStore) AddRecurrenceRule(ctx context.Context, groupID string, spec application.RuleSpec) (application.Group, error) {
	return application.Group{}, application.ErrNotFound
}

func (c *capturingSessionStore) ListSessions(ctx context.Context, filter application.SessionFilter) ([]application.Session, error) {
	return nil, nil
}

func (c *capturingSessionStore) GetSession(ctx context.Context, projectID, groupID, sessionID string) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (c *capturingSessionStore) SetOutcome(ctx context.Context, projectID, groupID, sessionID string, outcome scheduler.Outcome, notes *string) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (c *capturingSessionStore) MarkAttendanceGenerated(ctx context.Context, sessionID string) error {
	return nil
}

func (c *capturingSessionStore) ClearAttendanceGenerated(ctx context.Context, sessionID string) error {
	return nil
}

func TestServiceFactoryNewAttendanceService(t *testing.T) {
	factory := NewServiceFactory()
	records := &capturingAttendanceStore{}

	svc := factory.NewAttendanceService(AttendanceServiceDeps{Records: records, Sessions: &capturingSessionStore{}})
	record, err := svc.LogHours(context.Background(), application.LogHoursInput{
		MentorID:  "mentor-1",
		ProjectID: "project-1",
		Hours:     1.5,
		Date:      ReferenceTime(),
	})
	if err != nil {
		t.Fatalf("LogHours returned error: %v", err)
	}

	if record.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", record.ID)
	}
	if len(records.created) != 1 || records.created[0].ID != record.ID {
		t.Fatalf("store received unexpected records: %+v", records.created)
	}
	if !record.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), record.CreatedAt)
	}
	if !record.Date.Equal(recurrence.Day(ReferenceTime())) {
		t.Fatalf("expected date truncated to the day, got %v", record.Date)
	}
}

func TestServiceFactoryNewGroupService(t *testing.T) {
	factory := NewServiceFactory()
	store := &capturingSessionStore{}
	fixture := NewGroupFixture(WithGroupTimes("08:00", "10:30"))

	svc := factory.NewGroupService(GroupServiceDeps{Store: store})
	group, err := svc.CreateGroup(context.Background(), fixture.Spec())
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if group.ID != "group-1" {
		t.Fatalf("unexpected group id %q", group.ID)
	}
	if store.created.StartTime != "08:00:00" || store.created.EndTime != "10:30:00" {
		t.Fatalf("expected normalised times, got %q-%q", store.created.StartTime, store.created.EndTime)
	}
}

func TestServiceFactoryOptions(t *testing.T) {
	clock := NewClock(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))
	ids := NewIDGenerator("att")
	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(ids))

	records := &capturingAttendanceStore{}
	svc := factory.NewAttendanceService(AttendanceServiceDeps{Records: records, Sessions: &capturingSessionStore{}})
	record, err := svc.LogHours(context.Background(), application.LogHoursInput{
		MentorID:  "mentor-1",
		ProjectID: "project-1",
		Hours:     2,
		Date:      clock.Now(),
	})
	if err != nil {
		t.Fatalf("LogHours returned error: %v", err)
	}
	if record.ID != "att-1" {
		t.Fatalf("expected att-1, got %q", record.ID)
	}
	if !record.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("expected clock time, got %v", record.CreatedAt)
	}
}
