package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/mentorship-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) nowOr(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return f.Clock.NowFunc()
}

// GroupServiceDeps captures dependencies for constructing a group service.
type GroupServiceDeps struct {
	Store  application.SessionStore
	Now    func() time.Time
	Logger *slog.Logger
}

// NewGroupService builds a group service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewGroupService(deps GroupServiceDeps) *application.GroupService {
	return application.NewGroupServiceWithLogger(deps.Store, f.nowOr(deps.Now), deps.Logger)
}

// SessionServiceDeps captures dependencies for constructing a session service.
type SessionServiceDeps struct {
	Store  application.SessionStore
	Now    func() time.Time
	Logger *slog.Logger
}

// NewSessionService builds a session service using the supplied dependencies.
func (f *ServiceFactory) NewSessionService(deps SessionServiceDeps) *application.SessionService {
	return application.NewSessionServiceWithLogger(deps.Store, f.nowOr(deps.Now), deps.Logger)
}

// AttendanceServiceDeps captures dependencies for constructing an attendance
// service.
type AttendanceServiceDeps struct {
	Records     application.AttendanceStore
	Sessions    application.SessionStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAttendanceService builds an attendance service using the supplied
// dependencies.
func (f *ServiceFactory) NewAttendanceService(deps AttendanceServiceDeps) *application.AttendanceService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	return application.NewAttendanceServiceWithLogger(
		deps.Records,
		deps.Sessions,
		idGen,
		f.nowOr(deps.Now),
		deps.Logger,
	)
}
