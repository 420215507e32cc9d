package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/recurrence"
)

// GroupRepository implements persistence.GroupRepository using SQLite.
type GroupRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	newID  func() string
	now    func() time.Time
}

// NewGroupRepository creates a group repository. newID names the rules and
// sessions it materialises.
func NewGroupRepository(pool *ConnectionPool, newID func() string, now func() time.Time) *GroupRepository {
	if now == nil {
		now = time.Now
	}
	return &GroupRepository{pool: pool, mapper: NewErrorMapper(), newID: newID, now: now}
}

type groupRow struct {
	ID           string `db:"id"`
	ProjectID    string `db:"project_id"`
	MentorID     string `db:"mentor_id"`
	Status       string `db:"status"`
	SessionCount int    `db:"session_count"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

type ruleRow struct {
	ID         string `db:"id"`
	GroupID    string `db:"group_id"`
	Position   int    `db:"position"`
	Weekday    int    `db:"weekday"`
	StartTime  string `db:"start_time"`
	EndTime    string `db:"end_time"`
	Location   string `db:"location"`
	Mode       string `db:"mode"`
	ValidFrom  string `db:"valid_from"`
	ValidUntil string `db:"valid_until"`
	CreatedAt  string `db:"created_at"`
}

// CreateGroup inserts the group and its rules and materialises their
// sessions in one transaction. Where rules share a date the session that
// starts first is kept.
func (r *GroupRepository) CreateGroup(ctx context.Context, group persistence.Group) (persistence.Group, error) {
	if strings.TrimSpace(group.ID) == "" || strings.TrimSpace(group.ProjectID) == "" || strings.TrimSpace(group.MentorID) == "" {
		return persistence.Group{}, fmt.Errorf("%w: group id, project and mentor are required", persistence.ErrConstraintViolation)
	}
	if group.Status == "" {
		group.Status = "active"
	}
	now := r.now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	if group.UpdatedAt.IsZero() {
		group.UpdatedAt = group.CreatedAt
	}

	var created persistence.Group
	err := r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO groups (id, project_id, mentor_id, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			group.ID, group.ProjectID, group.MentorID, group.Status,
			formatTimestamp(group.CreatedAt), formatTimestamp(group.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rules := make([]recurrence.Rule, 0, len(group.Rules))
		for i, rule := range group.Rules {
			rule.GroupID = group.ID
			rule.Position = i
			expandable, err := r.insertRule(ctx, tx, rule, now)
			if err != nil {
				return err
			}
			rules = append(rules, expandable)
		}
		if err := r.insertSessions(ctx, tx, recurrence.ExpandAll(rules), now); err != nil {
			return err
		}

		created, err = r.loadGroup(ctx, tx, group.ID)
		return err
	})
	if err != nil {
		return persistence.Group{}, err
	}
	return created, nil
}

// GetGroup returns the group with its rules in creation order.
func (r *GroupRepository) GetGroup(ctx context.Context, id string) (persistence.Group, error) {
	if id == "" {
		return persistence.Group{}, persistence.ErrNotFound
	}
	return r.loadGroup(ctx, r.pool.db, id)
}

// AppendRule adds a rule after the group's existing rules and materialises
// its sessions. Existing rules and sessions are left untouched; dates the
// group already has a session for are skipped.
func (r *GroupRepository) AppendRule(ctx context.Context, groupID string, rule persistence.RecurrenceRule) (persistence.Group, error) {
	now := r.now().UTC()

	var updated persistence.Group
	err := r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var next int
		err := tx.GetContext(ctx, &next, `
			SELECT COALESCE(MAX(r.position) + 1, 0)
			FROM groups g LEFT JOIN recurrence_rules r ON r.group_id = g.id
			WHERE g.id = ?
			GROUP BY g.id`, groupID)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rule.GroupID = groupID
		rule.Position = next
		expandable, err := r.insertRule(ctx, tx, rule, now)
		if err != nil {
			return err
		}
		if err := r.insertSessions(ctx, tx, recurrence.Expand(expandable), now); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE groups SET updated_at = ? WHERE id = ?`, formatTimestamp(now), groupID); err != nil {
			return r.mapper.MapError(err)
		}

		updated, err = r.loadGroup(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return persistence.Group{}, err
	}
	return updated, nil
}

func (r *GroupRepository) insertRule(ctx context.Context, tx *sqlx.Tx, rule persistence.RecurrenceRule, now time.Time) (recurrence.Rule, error) {
	if rule.ID == "" {
		rule.ID = r.newID()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	expandable, err := toRecurrenceRule(rule)
	if err != nil {
		return recurrence.Rule{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recurrence_rules (id, group_id, position, weekday, start_time, end_time, location, mode, valid_from, valid_until, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.GroupID, rule.Position, rule.Weekday,
		expandable.StartTime.String(), expandable.EndTime.String(),
		rule.Location, rule.Mode,
		formatDate(expandable.ValidFrom), formatDate(expandable.ValidUntil),
		formatTimestamp(rule.CreatedAt),
	)
	if err != nil {
		return recurrence.Rule{}, r.mapper.MapError(err)
	}
	return expandable, nil
}

// insertSessions stores expanded sessions in order. A date the group already
// has a session for keeps the existing one.
func (r *GroupRepository) insertSessions(ctx context.Context, tx *sqlx.Tx, sessions []recurrence.Session, now time.Time) error {
	stamp := formatTimestamp(now)
	for _, session := range sessions {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO sessions (id, group_id, rule_id, date, start_time, end_time, location, mode, outcome, attendance_generated, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', 0, ?, ?)`,
			r.newID(), session.GroupID, session.RuleID, formatDate(session.Date),
			session.StartTime.String(), session.EndTime.String(),
			session.Location, string(session.Mode), stamp, stamp,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

func (r *GroupRepository) loadGroup(ctx context.Context, q sqlx.QueryerContext, id string) (persistence.Group, error) {
	var row groupRow
	err := sqlx.GetContext(ctx, q, &row, `
		SELECT g.id, g.project_id, g.mentor_id, g.status, g.created_at, g.updated_at,
			(SELECT COUNT(*) FROM sessions s WHERE s.group_id = g.id) AS session_count
		FROM groups g
		WHERE g.id = ?`, id)
	if err != nil {
		return persistence.Group{}, r.mapper.MapError(err)
	}

	var rules []ruleRow
	err = sqlx.SelectContext(ctx, q, &rules, `
		SELECT id, group_id, position, weekday, start_time, end_time, location, mode, valid_from, valid_until, created_at
		FROM recurrence_rules
		WHERE group_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return persistence.Group{}, r.mapper.MapError(err)
	}

	group, err := row.toModel()
	if err != nil {
		return persistence.Group{}, err
	}
	for _, rr := range rules {
		rule, err := rr.toModel()
		if err != nil {
			return persistence.Group{}, err
		}
		group.Rules = append(group.Rules, rule)
	}
	return group, nil
}

func (row groupRow) toModel() (persistence.Group, error) {
	createdAt, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return persistence.Group{}, err
	}
	updatedAt, err := parseTimestamp(row.UpdatedAt)
	if err != nil {
		return persistence.Group{}, err
	}
	return persistence.Group{
		ID:           row.ID,
		ProjectID:    row.ProjectID,
		MentorID:     row.MentorID,
		Status:       row.Status,
		SessionCount: row.SessionCount,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func (row ruleRow) toModel() (persistence.RecurrenceRule, error) {
	validFrom, err := parseDate(row.ValidFrom)
	if err != nil {
		return persistence.RecurrenceRule{}, err
	}
	validUntil, err := parseDate(row.ValidUntil)
	if err != nil {
		return persistence.RecurrenceRule{}, err
	}
	createdAt, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return persistence.RecurrenceRule{}, err
	}
	return persistence.RecurrenceRule{
		ID:         row.ID,
		GroupID:    row.GroupID,
		Position:   row.Position,
		Weekday:    row.Weekday,
		StartTime:  row.StartTime,
		EndTime:    row.EndTime,
		Location:   row.Location,
		Mode:       row.Mode,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
		CreatedAt:  createdAt,
	}, nil
}

func toRecurrenceRule(rule persistence.RecurrenceRule) (recurrence.Rule, error) {
	start, err := recurrence.ParseClock(rule.StartTime)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: start_time: %v", persistence.ErrConstraintViolation, err)
	}
	end, err := recurrence.ParseClock(rule.EndTime)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: end_time: %v", persistence.ErrConstraintViolation, err)
	}
	weekday := recurrence.Weekday(rule.Weekday)
	if !weekday.Valid() {
		return recurrence.Rule{}, fmt.Errorf("%w: weekday %d out of range", persistence.ErrConstraintViolation, rule.Weekday)
	}
	return recurrence.Rule{
		ID:         rule.ID,
		GroupID:    rule.GroupID,
		Weekday:    weekday,
		StartTime:  start,
		EndTime:    end,
		Location:   rule.Location,
		Mode:       recurrence.Mode(rule.Mode),
		ValidFrom:  recurrence.Day(rule.ValidFrom),
		ValidUntil: recurrence.Day(rule.ValidUntil),
	}, nil
}
