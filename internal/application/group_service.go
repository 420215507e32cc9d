package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/mentorship-scheduler/internal/recurrence"
)

// GroupService creates mentoring groups and manages their recurrence rules.
type GroupService struct {
	store  SessionStore
	now    func() time.Time
	logger *slog.Logger
}

// NewGroupService wires dependencies for group operations.
func NewGroupService(store SessionStore, now func() time.Time) *GroupService {
	return NewGroupServiceWithLogger(store, now, nil)
}

// NewGroupServiceWithLogger wires dependencies with a specific logger.
func NewGroupServiceWithLogger(store SessionStore, now func() time.Time, logger *slog.Logger) *GroupService {
	if now == nil {
		now = time.Now
	}
	return &GroupService{store: store, now: now, logger: defaultLogger(logger)}
}

func (s *GroupService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GroupService", operation, attrs...)
}

// CreateGroup validates the spec and creates a single-rule group.
func (s *GroupService) CreateGroup(ctx context.Context, spec GroupSpec) (group Group, err error) {
	if s == nil {
		return Group{}, fmt.Errorf("GroupService is nil")
	}

	logger := s.loggerWith(ctx, "CreateGroup",
		"project_id", spec.ProjectID,
		"mentor_id", spec.MentorID,
		"weekday", spec.Weekday.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create group", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("group_id", group.ID, "session_count", group.SessionCount).InfoContext(ctx, "group created")
	}()

	normalized, vErr := normalizeGroupSpec(spec)
	if vErr.HasErrors() {
		return Group{}, vErr
	}

	group, err = s.store.CreateGroup(ctx, normalized)
	if err != nil {
		return Group{}, mapStoreError(err)
	}
	return group, nil
}

// CreateForDays creates one group per weekday from a shared base spec. The
// base spec's own weekday is ignored. Weekdays run sequentially in ascending
// order and a failing day does not stop the rest; groups created before a
// failure are kept. Once started the batch runs to completion even if ctx is
// cancelled. The returned error is non-nil only for validation failures, which
// are reported before any group is created.
func (s *GroupService) CreateForDays(ctx context.Context, base GroupSpec, weekdays []recurrence.Weekday) (BatchResult, error) {
	if s == nil {
		return BatchResult{}, fmt.Errorf("GroupService is nil")
	}

	logger := s.loggerWith(ctx, "CreateForDays",
		"project_id", base.ProjectID,
		"mentor_id", base.MentorID,
	)

	days, vErr := normalizeWeekdays(weekdays)
	base.Weekday = recurrence.Monday
	normalized, specErr := normalizeGroupSpec(base)
	vErr.merge(specErr)
	if vErr.HasErrors() {
		logger.WarnContext(ctx, "batch rejected", "error", vErr, "error_kind", ErrorKind(vErr))
		return BatchResult{}, vErr
	}

	detached := context.WithoutCancel(ctx)
	result := BatchResult{Errors: make(map[recurrence.Weekday]error)}
	for _, day := range days {
		spec := normalized
		spec.Weekday = day

		group, err := s.store.CreateGroup(detached, spec)
		if err != nil {
			err = mapStoreError(err)
			result.Errors[day] = err
			logger.ErrorContext(ctx, "failed to create group for weekday",
				"weekday", day.String(), "error", err, "error_kind", ErrorKind(err))
			continue
		}
		result.Created = append(result.Created, group)
	}

	logger.InfoContext(ctx, "batch finished",
		"outcome", string(result.Outcome()),
		"created", len(result.Created),
		"failed", len(result.Errors),
	)
	return result, nil
}

// GetGroup returns a group that belongs to the given project.
func (s *GroupService) GetGroup(ctx context.Context, projectID, groupID string) (Group, error) {
	if s == nil {
		return Group{}, fmt.Errorf("GroupService is nil")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return Group{}, mapStoreError(err)
	}
	if projectID != "" && group.ProjectID != projectID {
		return Group{}, ErrNotFound
	}
	return group, nil
}

// AddRule appends a recurrence rule to an existing group. Sessions for the new
// rule are materialised; earlier rules and their sessions are not modified.
func (s *GroupService) AddRule(ctx context.Context, projectID, groupID string, spec RuleSpec) (group Group, err error) {
	if s == nil {
		return Group{}, fmt.Errorf("GroupService is nil")
	}

	logger := s.loggerWith(ctx, "AddRule",
		"project_id", projectID,
		"group_id", groupID,
		"weekday", spec.Weekday.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add rule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rule_count", len(group.Rules), "session_count", group.SessionCount).InfoContext(ctx, "rule added")
	}()

	normalized, vErr := normalizeRuleSpec(spec)
	if vErr.HasErrors() {
		return Group{}, vErr
	}

	if _, err = s.GetGroup(ctx, projectID, groupID); err != nil {
		return Group{}, err
	}

	group, err = s.store.AddRecurrenceRule(ctx, groupID, normalized)
	if err != nil {
		return Group{}, mapStoreError(err)
	}
	return group, nil
}

func normalizeGroupSpec(spec GroupSpec) (GroupSpec, *ValidationError) {
	vErr := &ValidationError{}

	spec.ProjectID = strings.TrimSpace(spec.ProjectID)
	spec.MentorID = strings.TrimSpace(spec.MentorID)
	if spec.ProjectID == "" {
		vErr.add("project_id", "project is required")
	}
	if spec.MentorID == "" {
		vErr.add("mentor_id", "mentor is required")
	}

	rule, ruleErr := normalizeRuleSpec(spec.RuleSpec)
	vErr.merge(ruleErr)
	spec.RuleSpec = rule
	return spec, vErr
}

// normalizeRuleSpec validates a rule and rewrites its times as HH:MM:SS and
// its dates as UTC calendar days.
func normalizeRuleSpec(spec RuleSpec) (RuleSpec, *ValidationError) {
	vErr := &ValidationError{}

	if !spec.Weekday.Valid() {
		vErr.add("weekday", "weekday must be between 0 (Monday) and 6 (Sunday)")
	}

	start, startErr := recurrence.ParseClock(spec.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be HH:MM or HH:MM:SS")
	}
	end, endErr := recurrence.ParseClock(spec.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be HH:MM or HH:MM:SS")
	}
	if startErr == nil && endErr == nil {
		if !start.Before(end) {
			vErr.add("end_time", "end time must be after start time")
		}
		spec.StartTime = start.String()
		spec.EndTime = end.String()
	}

	if spec.Mode == "" {
		spec.Mode = recurrence.ModeInPerson
	}
	if !spec.Mode.Valid() {
		vErr.add("mode", "mode must be in-person, remote or hybrid")
	}
	spec.Location = strings.TrimSpace(spec.Location)

	switch {
	case spec.ValidFrom.IsZero():
		vErr.add("valid_from", "valid from is required")
	case spec.ValidUntil.IsZero():
		vErr.add("valid_until", "valid until is required")
	default:
		spec.ValidFrom = recurrence.Day(spec.ValidFrom)
		spec.ValidUntil = recurrence.Day(spec.ValidUntil)
		if spec.ValidFrom.After(spec.ValidUntil) {
			vErr.add("valid_until", "valid until must not be before valid from")
		}
	}

	return spec, vErr
}

func normalizeWeekdays(weekdays []recurrence.Weekday) ([]recurrence.Weekday, *ValidationError) {
	vErr := &ValidationError{}
	if len(weekdays) == 0 {
		vErr.add("weekdays", "at least one weekday is required")
		return nil, vErr
	}

	seen := make(map[recurrence.Weekday]struct{}, len(weekdays))
	days := make([]recurrence.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		if !day.Valid() {
			vErr.add("weekdays", fmt.Sprintf("weekday %d is out of range", int(day)))
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, vErr
}
