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

// AttendanceRepository implements persistence.AttendanceRepository using SQLite.
type AttendanceRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewAttendanceRepository creates an attendance repository.
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool, mapper: NewErrorMapper()}
}

type attendanceRow struct {
	ID          string         `db:"id"`
	SessionID   sql.NullString `db:"session_id"`
	MentorID    string         `db:"mentor_id"`
	ProjectID   string         `db:"project_id"`
	Hours       float64        `db:"hours"`
	IsConfirmed bool           `db:"is_confirmed"`
	ConfirmedBy sql.NullString `db:"confirmed_by"`
	ConfirmedAt sql.NullString `db:"confirmed_at"`
	Date        string         `db:"date"`
	CreatedAt   string         `db:"created_at"`
}

const attendanceColumns = `id, session_id, mentor_id, project_id, hours, is_confirmed, confirmed_by, confirmed_at, date, created_at`

// CreateAttendanceRecord inserts a new record.
func (r *AttendanceRepository) CreateAttendanceRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.MentorID == "" || record.ProjectID == "" {
		return fmt.Errorf("%w: id, mentor and project are required", persistence.ErrConstraintViolation)
	}

	var confirmedAt sql.NullString
	if record.ConfirmedAt != nil {
		confirmedAt = sql.NullString{String: formatTimestamp(*record.ConfirmedAt), Valid: true}
	}

	return r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_records (`+attendanceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, nullString(record.SessionID), record.MentorID, record.ProjectID,
			record.Hours, record.IsConfirmed, nullString(record.ConfirmedBy), confirmedAt,
			formatDate(record.Date), formatTimestamp(record.CreatedAt),
		)
		return r.mapper.MapError(err)
	})
}

// GetAttendanceRecord returns a record by ID.
func (r *AttendanceRepository) GetAttendanceRecord(ctx context.Context, id string) (persistence.AttendanceRecord, error) {
	return r.get(ctx, r.pool.db, id)
}

func (r *AttendanceRepository) get(ctx context.Context, q sqlx.QueryerContext, id string) (persistence.AttendanceRecord, error) {
	var row attendanceRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT `+attendanceColumns+` FROM attendance_records WHERE id = ?`, id); err != nil {
		return persistence.AttendanceRecord{}, r.mapper.MapError(err)
	}
	return row.toModel()
}

// ListAttendanceRecords returns records matching the filter, newest first.
func (r *AttendanceRepository) ListAttendanceRecords(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.MentorID != "" {
		clauses = append(clauses, "mentor_id = ?")
		args = append(args, filter.MentorID)
	}
	if filter.ProjectID != "" {
		clauses = append(clauses, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Confirmed != nil {
		clauses = append(clauses, "is_confirmed = ?")
		args = append(args, *filter.Confirmed)
	}
	if filter.From != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatDate(*filter.To))
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, id DESC"

	var rows []attendanceRow
	if err := sqlx.SelectContext(ctx, r.pool.db, &rows, query, args...); err != nil {
		return nil, r.mapper.MapError(err)
	}

	records := make([]persistence.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ConfirmAttendanceRecord marks the record confirmed. Confirming an already
// confirmed record returns it unchanged.
func (r *AttendanceRepository) ConfirmAttendanceRecord(ctx context.Context, id, confirmedBy string, at time.Time) (persistence.AttendanceRecord, error) {
	var confirmed persistence.AttendanceRecord
	err := r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE attendance_records
			SET is_confirmed = 1, confirmed_by = ?, confirmed_at = ?
			WHERE id = ? AND is_confirmed = 0`,
			confirmedBy, formatTimestamp(at), id,
		); err != nil {
			return r.mapper.MapError(err)
		}

		var err error
		confirmed, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return persistence.AttendanceRecord{}, err
	}
	return confirmed, nil
}

func (row attendanceRow) toModel() (persistence.AttendanceRecord, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return persistence.AttendanceRecord{}, err
	}
	createdAt, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return persistence.AttendanceRecord{}, err
	}
	record := persistence.AttendanceRecord{
		ID:          row.ID,
		SessionID:   stringPtr(row.SessionID),
		MentorID:    row.MentorID,
		ProjectID:   row.ProjectID,
		Hours:       row.Hours,
		IsConfirmed: row.IsConfirmed,
		ConfirmedBy: stringPtr(row.ConfirmedBy),
		Date:        date,
		CreatedAt:   createdAt,
	}
	if row.ConfirmedAt.Valid {
		at, err := parseTimestamp(row.ConfirmedAt.String)
		if err != nil {
			return persistence.AttendanceRecord{}, err
		}
		record.ConfirmedAt = &at
	}
	return record, nil
}
