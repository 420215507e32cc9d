package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/mentorship-scheduler/internal/persistence"
)

const (
	attendanceKeyPrefix = "attendance:"
	attendanceByDateKey = "attendance_by_date"

	maxConfirmAttempts = 5
)

// Config holds configuration for the Redis attendance repository.
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// AttendanceRepository implements persistence.AttendanceRepository on Redis.
// Records are stored as JSON under attendance:{id} and indexed by date in a
// sorted set.
type AttendanceRepository struct {
	client *redis.Client
}

// NewAttendanceRepository creates a Redis-backed attendance repository.
func NewAttendanceRepository(cfg *Config) (*AttendanceRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &AttendanceRepository{client: cfg.RedisClient}, nil
}

func recordKey(id string) string {
	return attendanceKeyPrefix + id
}

func dateScore(t time.Time) float64 {
	return float64(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix())
}

// CreateAttendanceRecord stores a new record. Existing IDs are rejected.
func (r *AttendanceRepository) CreateAttendanceRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.MentorID == "" || record.ProjectID == "" {
		return fmt.Errorf("%w: id, mentor and project are required", persistence.ErrConstraintViolation)
	}
	if record.Hours < 0 {
		return fmt.Errorf("%w: hours must not be negative", persistence.ErrConstraintViolation)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal attendance record: %w", err)
	}

	key := recordKey(record.ID)
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check attendance record: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: attendance record %s", persistence.ErrDuplicate, record.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.ZAdd(ctx, attendanceByDateKey, redis.Z{Score: dateScore(record.Date), Member: record.ID})
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: attendance record %s", persistence.ErrDuplicate, record.ID)
	}
	if err != nil && !errors.Is(err, persistence.ErrDuplicate) {
		return fmt.Errorf("failed to save attendance record: %w", err)
	}
	return err
}

// GetAttendanceRecord returns a record by ID.
func (r *AttendanceRepository) GetAttendanceRecord(ctx context.Context, id string) (persistence.AttendanceRecord, error) {
	return r.get(ctx, r.client, id)
}

func (r *AttendanceRepository) get(ctx context.Context, c redis.Cmdable, id string) (persistence.AttendanceRecord, error) {
	if id == "" {
		return persistence.AttendanceRecord{}, persistence.ErrNotFound
	}
	payload, err := c.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return persistence.AttendanceRecord{}, persistence.ErrNotFound
		}
		return persistence.AttendanceRecord{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	var record persistence.AttendanceRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return persistence.AttendanceRecord{}, fmt.Errorf("failed to unmarshal attendance record: %w", err)
	}
	return record, nil
}

// ListAttendanceRecords returns records matching the filter, newest first.
func (r *AttendanceRepository) ListAttendanceRecords(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	bounds := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if filter.From != nil {
		bounds.Min = strconv.FormatFloat(dateScore(*filter.From), 'f', 0, 64)
	}
	if filter.To != nil {
		bounds.Max = strconv.FormatFloat(dateScore(*filter.To), 'f', 0, 64)
	}

	ids, err := r.client.ZRevRangeByScore(ctx, attendanceByDateKey, bounds).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance ids: %w", err)
	}
	if len(ids) == 0 {
		return []persistence.AttendanceRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance records: %w", err)
	}

	records := make([]persistence.AttendanceRecord, 0, len(values))
	for _, value := range values {
		payload, ok := value.(string)
		if !ok {
			// Index entry without a record.
			continue
		}
		var record persistence.AttendanceRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attendance record: %w", err)
		}
		if filter.Matches(record) {
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return records, nil
}

// ConfirmAttendanceRecord marks a record confirmed. A record that is already
// confirmed is returned unchanged.
func (r *AttendanceRepository) ConfirmAttendanceRecord(ctx context.Context, id, confirmedBy string, at time.Time) (persistence.AttendanceRecord, error) {
	key := recordKey(id)

	var confirmed persistence.AttendanceRecord
	txf := func(tx *redis.Tx) error {
		record, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if record.IsConfirmed {
			confirmed = record
			return nil
		}

		record.IsConfirmed = true
		record.ConfirmedBy = &confirmedBy
		confirmedAt := at.UTC()
		record.ConfirmedAt = &confirmedAt

		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal attendance record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		confirmed = record
		return nil
	}

	for attempt := 0; attempt < maxConfirmAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return confirmed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return persistence.AttendanceRecord{}, err
	}
	return persistence.AttendanceRecord{}, fmt.Errorf("%w: attendance record %s kept changing", persistence.ErrConflict, id)
}
