package attendance

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/mentorship-scheduler/internal/scheduler"
)

// BucketUnlinked collects hours from records that reference no known session.
const BucketUnlinked = "unlinked"

// Record is a logged block of mentor hours.
type Record struct {
	ID          string
	SessionID   *string
	MentorID    string
	ProjectID   string
	Hours       float64
	IsConfirmed bool
	ConfirmedBy *string
	ConfirmedAt *time.Time
	Date        time.Time
	CreatedAt   time.Time
}

// SessionInfo is the session data the aggregator needs to attribute hours.
// Either explicit Hours, integer start/end hours, or HH:MM time strings may
// describe the session length.
type SessionInfo struct {
	ID        string
	Status    scheduler.Status
	Hours     *float64
	StartHour *int
	EndHour   *int
	StartTime string
	EndTime   string
}

// Summary is the aggregate view over a set of records.
type Summary struct {
	TotalHours       float64            `json:"total_hours"`
	ConfirmedHours   float64            `json:"confirmed_hours"`
	UnconfirmedHours float64            `json:"unconfirmed_hours"`
	RecordCount      int                `json:"record_count"`
	UnconfirmedCount int                `json:"unconfirmed_count"`
	ByMentor         map[string]float64 `json:"by_mentor"`
	ByProject        map[string]float64 `json:"by_project"`
	BySession        map[string]float64 `json:"by_session"`
	ByStatus         map[string]float64 `json:"by_status"`
	SessionDurations map[string]float64 `json:"session_durations"`
}

// SessionDuration derives a session's length in hours. Explicit hours win,
// then the integer hour span, then the hour fields of the time strings.
// Sessions that cross midnight produce a negative value.
func SessionDuration(info SessionInfo) float64 {
	if info.Hours != nil {
		return *info.Hours
	}
	if info.StartHour != nil && info.EndHour != nil {
		return float64(*info.EndHour - *info.StartHour)
	}
	start, okStart := leadingHour(info.StartTime)
	end, okEnd := leadingHour(info.EndTime)
	if okStart && okEnd {
		return float64(end - start)
	}
	return 0
}

func leadingHour(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(value, ":")
	hour, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return hour, true
}

// Aggregate folds records into a Summary. Records are attributed to the
// status of the session they reference; records without a known session go to
// BucketUnlinked. The result does not depend on record order.
func Aggregate(records []Record, sessions map[string]SessionInfo) Summary {
	summary := Summary{
		ByMentor:         make(map[string]float64),
		ByProject:        make(map[string]float64),
		BySession:        make(map[string]float64),
		ByStatus:         make(map[string]float64),
		SessionDurations: make(map[string]float64),
	}

	for _, record := range records {
		summary.RecordCount++
		summary.TotalHours += record.Hours
		if record.IsConfirmed {
			summary.ConfirmedHours += record.Hours
		} else {
			summary.UnconfirmedHours += record.Hours
			summary.UnconfirmedCount++
		}

		summary.ByMentor[record.MentorID] += record.Hours
		summary.ByProject[record.ProjectID] += record.Hours

		bucket := BucketUnlinked
		if record.SessionID != nil {
			summary.BySession[*record.SessionID] += record.Hours
			if info, ok := sessions[*record.SessionID]; ok {
				bucket = string(info.Status)
				summary.SessionDurations[*record.SessionID] = SessionDuration(info)
			}
		}
		summary.ByStatus[bucket] += record.Hours
	}

	return summary
}

// SortByDateDesc orders records newest first. Records on the same date are
// ordered by creation time, newest first, then by ID.
func SortByDateDesc(records []Record) {
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
}
