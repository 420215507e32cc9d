package attendance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mentorship-scheduler/internal/scheduler"
)

func ptr[T any](v T) *T { return &v }

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSessionDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		info SessionInfo
		want float64
	}{
		{name: "explicit hours win", info: SessionInfo{Hours: ptr(1.5), StartHour: ptr(8), EndHour: ptr(12)}, want: 1.5},
		{name: "integer hour span", info: SessionInfo{StartHour: ptr(8), EndHour: ptr(10), StartTime: "01:00"}, want: 2},
		{name: "time strings", info: SessionInfo{StartTime: "16:30", EndTime: "18:45:00"}, want: 2},
		{name: "only one hour field falls through", info: SessionInfo{StartHour: ptr(8), StartTime: "09:00", EndTime: "12:00"}, want: 3},
		{name: "nothing usable", info: SessionInfo{StartTime: "soon"}, want: 0},
		{name: "empty", info: SessionInfo{}, want: 0},
		{name: "midnight crossing stays negative", info: SessionInfo{StartTime: "23:00", EndTime: "01:00"}, want: -22},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SessionDuration(tc.info))
		})
	}
}

func sampleRecords() []Record {
	return []Record{
		{ID: "a", SessionID: ptr("s1"), MentorID: "m1", ProjectID: "p1", Hours: 2, IsConfirmed: true, Date: day(2)},
		{ID: "b", SessionID: ptr("s2"), MentorID: "m1", ProjectID: "p1", Hours: 1.5, Date: day(9)},
		{ID: "c", MentorID: "m2", ProjectID: "p2", Hours: 3, Date: day(10)},
		{ID: "d", SessionID: ptr("ghost"), MentorID: "m2", ProjectID: "p1", Hours: 0.5, IsConfirmed: true, Date: day(11)},
	}
}

func sampleSessions() map[string]SessionInfo {
	return map[string]SessionInfo{
		"s1": {ID: "s1", Status: scheduler.StatusCompleted, StartTime: "16:00", EndTime: "18:00"},
		"s2": {ID: "s2", Status: scheduler.StatusPending, StartHour: ptr(8), EndHour: ptr(10)},
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	summary := Aggregate(sampleRecords(), sampleSessions())

	assert.Equal(t, 4, summary.RecordCount)
	assert.Equal(t, 7.0, summary.TotalHours)
	assert.Equal(t, 2.5, summary.ConfirmedHours)
	assert.Equal(t, 4.5, summary.UnconfirmedHours)
	assert.Equal(t, 2, summary.UnconfirmedCount)

	assert.Equal(t, map[string]float64{"m1": 3.5, "m2": 3.5}, summary.ByMentor)
	assert.Equal(t, map[string]float64{"p1": 4, "p2": 3}, summary.ByProject)
	assert.Equal(t, map[string]float64{"s1": 2, "s2": 1.5, "ghost": 0.5}, summary.BySession)
	assert.Equal(t, map[string]float64{
		string(scheduler.StatusCompleted): 2,
		string(scheduler.StatusPending):   1.5,
		BucketUnlinked:                    3.5,
	}, summary.ByStatus)
	assert.Equal(t, map[string]float64{"s1": 2, "s2": 2}, summary.SessionDurations)
}

func TestAggregate_TotalIsConfirmedPlusUnconfirmed(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	for i := 0; i < 20; i++ {
		records = append(records, Record{
			ID:          string(rune('e' + i)),
			MentorID:    "m3",
			ProjectID:   "p3",
			Hours:       float64(i) * 0.25,
			IsConfirmed: i%3 == 0,
		})
	}

	summary := Aggregate(records, sampleSessions())
	require.InDelta(t, summary.TotalHours, summary.ConfirmedHours+summary.UnconfirmedHours, 1e-9)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	t.Parallel()

	forward := sampleRecords()
	reversed := make([]Record, len(forward))
	for i, r := range forward {
		reversed[len(forward)-1-i] = r
	}

	a := Aggregate(forward, sampleSessions())
	b := Aggregate(reversed, sampleSessions())
	assert.Equal(t, a, b)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	summary := Aggregate(nil, nil)
	assert.Zero(t, summary.TotalHours)
	assert.Zero(t, summary.RecordCount)
	assert.NotNil(t, summary.ByStatus)
	assert.False(t, math.IsNaN(summary.UnconfirmedHours))
}

func TestSortByDateDesc(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "old", Date: day(2)},
		{ID: "same-early", Date: day(9), CreatedAt: created},
		{ID: "newest", Date: day(20)},
		{ID: "same-late", Date: day(9), CreatedAt: created.Add(time.Hour)},
	}

	SortByDateDesc(records)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"newest", "same-late", "same-early", "old"}, ids)
}
