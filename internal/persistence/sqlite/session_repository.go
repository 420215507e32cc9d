package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/mentorship-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool, mapper: NewErrorMapper()}
}

type sessionRow struct {
	ID                  string         `db:"id"`
	GroupID             string         `db:"group_id"`
	RuleID              string         `db:"rule_id"`
	ProjectID           string         `db:"project_id"`
	MentorID            string         `db:"mentor_id"`
	Date                string         `db:"date"`
	StartTime           string         `db:"start_time"`
	EndTime             string         `db:"end_time"`
	Location            string         `db:"location"`
	Mode                string         `db:"mode"`
	Outcome             string         `db:"outcome"`
	OutcomeNotes        sql.NullString `db:"outcome_notes"`
	AttendanceGenerated bool           `db:"attendance_generated"`
	CreatedAt           string         `db:"created_at"`
	UpdatedAt           string         `db:"updated_at"`
}

const sessionColumns = `
	s.id, s.group_id, s.rule_id, g.project_id, g.mentor_id, s.date, s.start_time, s.end_time,
	s.location, s.mode, s.outcome, s.outcome_notes, s.attendance_generated, s.created_at, s.updated_at`

// ListSessions returns sessions matching the filter ordered by date, start
// time and ID.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	var (
		clauses []string
		args    []any
	)
	if len(filter.IDs) > 0 {
		in, inArgs, err := sqlx.In("s.id IN (?)", filter.IDs)
		if err != nil {
			return nil, fmt.Errorf("failed to expand session ids: %w", err)
		}
		clauses = append(clauses, in)
		args = append(args, inArgs...)
	}
	if filter.GroupID != "" {
		clauses = append(clauses, "s.group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.ProjectID != "" {
		clauses = append(clauses, "g.project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.From != nil {
		clauses = append(clauses, "s.date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "s.date <= ?")
		args = append(args, formatDate(*filter.To))
	}
	if filter.AttendancePendingThrough != nil {
		clauses = append(clauses, "s.attendance_generated = 0", "s.date <= ?")
		args = append(args, formatDate(*filter.AttendancePendingThrough))
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions s JOIN groups g ON g.id = s.group_id`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.date ASC, s.start_time ASC, s.id ASC"

	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, r.pool.db, &rows, r.pool.db.Rebind(query), args...); err != nil {
		return nil, r.mapper.MapError(err)
	}

	sessions := make([]persistence.Session, 0, len(rows))
	for _, row := range rows {
		session, err := row.toModel()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// GetSession returns a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return r.getSession(ctx, r.pool.db, id)
}

func (r *SessionRepository) getSession(ctx context.Context, q sqlx.QueryerContext, id string) (persistence.Session, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+sessionColumns+` FROM sessions s JOIN groups g ON g.id = s.group_id WHERE s.id = ?`, id)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return row.toModel()
}

// UpdateOutcome records an outcome when the stored outcome still equals
// expected.
func (r *SessionRepository) UpdateOutcome(ctx context.Context, id, expected, outcome string, notes *string, updatedAt time.Time) (persistence.Session, error) {
	var updated persistence.Session
	err := r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE sessions SET outcome = ?, outcome_notes = ?, updated_at = ?
			WHERE id = ? AND outcome = ?`,
			outcome, nullString(notes), formatTimestamp(updatedAt), id, expected,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		updated, err = r.getSession(ctx, tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: session %s outcome is %q", persistence.ErrConflict, id, updated.Outcome)
		}
		return nil
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return updated, nil
}

// MarkAttendanceGenerated claims the session for attendance generation. It
// fails with persistence.ErrConflict when the session was already claimed.
func (r *SessionRepository) MarkAttendanceGenerated(ctx context.Context, id string, updatedAt time.Time) error {
	return r.setAttendanceGenerated(ctx, id, true, updatedAt)
}

// ClearAttendanceGenerated releases a claim taken by MarkAttendanceGenerated.
func (r *SessionRepository) ClearAttendanceGenerated(ctx context.Context, id string, updatedAt time.Time) error {
	return r.setAttendanceGenerated(ctx, id, false, updatedAt)
}

func (r *SessionRepository) setAttendanceGenerated(ctx context.Context, id string, generated bool, updatedAt time.Time) error {
	return r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE sessions SET attendance_generated = ?, updated_at = ?
			WHERE id = ? AND attendance_generated = ?`,
			generated, formatTimestamp(updatedAt), id, !generated,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected > 0 {
			return nil
		}

		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}
		return fmt.Errorf("%w: session %s attendance_generated is already %t", persistence.ErrConflict, id, generated)
	})
}

func (row sessionRow) toModel() (persistence.Session, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return persistence.Session{}, err
	}
	createdAt, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return persistence.Session{}, err
	}
	updatedAt, err := parseTimestamp(row.UpdatedAt)
	if err != nil {
		return persistence.Session{}, err
	}
	return persistence.Session{
		ID:                  row.ID,
		GroupID:             row.GroupID,
		RuleID:              row.RuleID,
		ProjectID:           row.ProjectID,
		MentorID:            row.MentorID,
		Date:                date,
		StartTime:           row.StartTime,
		EndTime:             row.EndTime,
		Location:            row.Location,
		Mode:                row.Mode,
		Outcome:             row.Outcome,
		OutcomeNotes:        stringPtr(row.OutcomeNotes),
		AttendanceGenerated: row.AttendanceGenerated,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}
