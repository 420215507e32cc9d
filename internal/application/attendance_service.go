package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/example/mentorship-scheduler/internal/attendance"
	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/recurrence"
	"github.com/example/mentorship-scheduler/internal/scheduler"
)

const summaryCacheTTL = 30 * time.Second

// AttendanceService records mentoring hours, confirms them and builds
// summaries.
type AttendanceService struct {
	records     AttendanceStore
	sessions    SessionStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	cache       *summaryCache
	sweepMu     sync.Mutex
}

// NewAttendanceService wires dependencies for attendance operations.
func NewAttendanceService(records AttendanceStore, sessions SessionStore, idGenerator func() string, now func() time.Time) *AttendanceService {
	return NewAttendanceServiceWithLogger(records, sessions, idGenerator, now, nil)
}

// NewAttendanceServiceWithLogger wires dependencies with a specific logger.
func NewAttendanceServiceWithLogger(records AttendanceStore, sessions SessionStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		records:     records,
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		cache:       newSummaryCache(summaryCacheTTL, 64),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// ListRecords returns records matching the filter, newest first.
func (s *AttendanceService) ListRecords(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("AttendanceService is nil")
	}
	if vErr := validateAttendanceFilter(filter); vErr.HasErrors() {
		return nil, vErr
	}

	records, err := s.records.ListAttendanceRecords(ctx, filter)
	if err != nil {
		err = mapStoreError(err)
		s.loggerWith(ctx, "ListRecords").ErrorContext(ctx, "failed to list attendance", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	sorted := toAggregateRecords(records)
	attendance.SortByDateDesc(sorted)
	return fromAggregateRecords(sorted), nil
}

// LogHours stores a manual hour entry, optionally tied to a session.
func (s *AttendanceService) LogHours(ctx context.Context, input LogHoursInput) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	logger := s.loggerWith(ctx, "LogHours",
		"mentor_id", input.MentorID,
		"project_id", input.ProjectID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to log hours", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID, "hours", record.Hours).InfoContext(ctx, "hours logged")
	}()

	vErr := &ValidationError{}
	input.MentorID = strings.TrimSpace(input.MentorID)
	input.ProjectID = strings.TrimSpace(input.ProjectID)
	if input.MentorID == "" {
		vErr.add("mentor_id", "mentor is required")
	}
	if input.ProjectID == "" {
		vErr.add("project_id", "project is required")
	}
	if math.IsNaN(input.Hours) || math.IsInf(input.Hours, 0) || input.Hours < 0 {
		vErr.add("hours", "hours must be a non-negative number")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	input.SessionID = trimNotes(input.SessionID)
	if vErr.HasErrors() {
		return AttendanceRecord{}, vErr
	}

	record = AttendanceRecord{
		ID:        s.idGenerator(),
		SessionID: input.SessionID,
		MentorID:  input.MentorID,
		ProjectID: input.ProjectID,
		Hours:     input.Hours,
		Date:      recurrence.Day(input.Date),
		CreatedAt: s.now(),
	}
	if err = s.records.CreateAttendanceRecord(ctx, record); err != nil {
		return AttendanceRecord{}, mapStoreError(err)
	}
	s.cache.Invalidate()
	return record, nil
}

// Confirm marks a record confirmed. Confirming an already confirmed record
// returns it unchanged.
func (s *AttendanceService) Confirm(ctx context.Context, id, confirmedBy string) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	logger := s.loggerWith(ctx, "Confirm", "record_id", id, "confirmed_by", confirmedBy)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to confirm attendance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "attendance confirmed")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(id) == "" {
		vErr.add("id", "record is required")
	}
	confirmedBy = strings.TrimSpace(confirmedBy)
	if confirmedBy == "" {
		vErr.add("confirmed_by", "confirming user is required")
	}
	if vErr.HasErrors() {
		return AttendanceRecord{}, vErr
	}

	record, err = s.records.ConfirmAttendanceRecord(ctx, id, confirmedBy, s.now())
	if err != nil {
		return AttendanceRecord{}, mapStoreError(err)
	}
	s.cache.Invalidate()
	return record, nil
}

// Summary aggregates the records matching the filter. Hours are attributed to
// the resolved status of the session each record references.
func (s *AttendanceService) Summary(ctx context.Context, filter AttendanceFilter) (attendance.Summary, error) {
	if s == nil {
		return attendance.Summary{}, fmt.Errorf("AttendanceService is nil")
	}
	if vErr := validateAttendanceFilter(filter); vErr.HasErrors() {
		return attendance.Summary{}, vErr
	}

	key := buildSummaryCacheKey(filter)
	if summary, ok := s.cache.Get(key); ok {
		return summary, nil
	}
	generation := s.cache.Generation()

	logger := s.loggerWith(ctx, "Summary")

	records, err := s.records.ListAttendanceRecords(ctx, filter)
	if err != nil {
		err = mapStoreError(err)
		logger.ErrorContext(ctx, "failed to list attendance", "error", err, "error_kind", ErrorKind(err))
		return attendance.Summary{}, err
	}

	lookup, err := s.sessionLookup(ctx, records)
	if err != nil {
		err = mapStoreError(err)
		logger.ErrorContext(ctx, "failed to load sessions", "error", err, "error_kind", ErrorKind(err))
		return attendance.Summary{}, err
	}

	summary := attendance.Aggregate(toAggregateRecords(records), lookup)
	s.cache.Store(key, generation, summary)
	return summary, nil
}

// InvalidateSummaries drops cached summaries. Call it when anything a summary
// depends on changes outside this service, such as a session outcome.
func (s *AttendanceService) InvalidateSummaries() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

func (s *AttendanceService) sessionLookup(ctx context.Context, records []AttendanceRecord) (map[string]attendance.SessionInfo, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, record := range records {
		if record.SessionID == nil {
			continue
		}
		if _, ok := seen[*record.SessionID]; ok {
			continue
		}
		seen[*record.SessionID] = struct{}{}
		ids = append(ids, *record.SessionID)
	}

	lookup := make(map[string]attendance.SessionInfo, len(ids))
	if len(ids) == 0 || s.sessions == nil {
		return lookup, nil
	}

	sessions, err := s.sessions.ListSessions(ctx, SessionFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, session := range sessions {
		lookup[session.ID] = attendance.SessionInfo{
			ID:        session.ID,
			Status:    scheduler.Resolve(session.schedulerSession(), now),
			StartTime: session.StartTime.String(),
			EndTime:   session.EndTime.String(),
		}
	}
	return lookup, nil
}

// GenerateFromElapsedSessions creates one unconfirmed record for every session
// dated today or earlier whose attendance has not been generated. Cancelled and
// missed sessions, and sessions that already have a record, are flagged
// without creating one. Each session is claimed before its record is written,
// so overlapping sweeps never create two records for one session.
func (s *AttendanceService) GenerateFromElapsedSessions(ctx context.Context) (result SweepResult, err error) {
	if s == nil {
		return SweepResult{}, fmt.Errorf("AttendanceService is nil")
	}

	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	logger := s.loggerWith(ctx, "GenerateFromElapsedSessions")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "attendance sweep failed",
				"error", err, "error_kind", ErrorKind(err),
				"created", len(result.Created), "skipped", result.Skipped)
			return
		}
		logger.InfoContext(ctx, "attendance sweep finished", "created", len(result.Created), "skipped", result.Skipped)
	}()

	now := s.now()
	today := recurrence.Day(now)
	sessions, err := s.sessions.ListSessions(ctx, SessionFilter{AttendancePendingThrough: &today})
	if err != nil {
		return result, mapStoreError(err)
	}
	if len(sessions) > 0 {
		defer s.cache.Invalidate()
	}

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		create := true
		switch scheduler.Resolve(session.schedulerSession(), now) {
		case scheduler.StatusCancelled, scheduler.StatusMissed:
			create = false
		default:
			existing, err := s.records.ListAttendanceRecords(ctx, AttendanceFilter{SessionID: session.ID})
			if err != nil {
				return result, mapStoreError(err)
			}
			create = len(existing) == 0
		}

		if err := s.sessions.MarkAttendanceGenerated(ctx, session.ID); err != nil {
			if errors.Is(err, persistence.ErrConflict) {
				logger.DebugContext(ctx, "session already claimed", "session_id", session.ID)
				continue
			}
			return result, mapStoreError(err)
		}

		if !create {
			result.Skipped++
			continue
		}

		sessionID := session.ID
		record := AttendanceRecord{
			ID:        s.idGenerator(),
			SessionID: &sessionID,
			MentorID:  session.MentorID,
			ProjectID: session.ProjectID,
			Hours:     session.Hours(),
			Date:      session.Date,
			CreatedAt: now,
		}
		if err := s.records.CreateAttendanceRecord(ctx, record); err != nil {
			if clearErr := s.sessions.ClearAttendanceGenerated(context.WithoutCancel(ctx), session.ID); clearErr != nil {
				err = errors.Join(err, fmt.Errorf("release session %s: %w", session.ID, clearErr))
			}
			return result, mapStoreError(err)
		}
		result.Created = append(result.Created, record)
	}
	return result, nil
}

func validateAttendanceFilter(filter AttendanceFilter) *ValidationError {
	vErr := &ValidationError{}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		vErr.add("to", "to must not be before from")
	}
	return vErr
}

func toAggregateRecords(records []AttendanceRecord) []attendance.Record {
	out := make([]attendance.Record, len(records))
	for i, r := range records {
		out[i] = attendance.Record(r)
	}
	return out
}

func fromAggregateRecords(records []attendance.Record) []AttendanceRecord {
	out := make([]AttendanceRecord, len(records))
	for i, r := range records {
		out[i] = AttendanceRecord(r)
	}
	return out
}
