package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/persistence/redisstore"
	"github.com/example/mentorship-scheduler/internal/persistence/sqlite"
	"github.com/example/mentorship-scheduler/internal/testfixtures"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testServer struct {
	t       *testing.T
	handler http.Handler
	clock   *testfixtures.Clock
	app     *app
}

func newTestServer(t *testing.T, attendance func(h *testfixtures.SQLiteHarness) persistence.AttendanceRepository) *testServer {
	t.Helper()

	clock := testfixtures.NewClock(time.Date(2024, time.January, 17, 12, 0, 0, 0, time.UTC))
	rows := testfixtures.NewIDGenerator("row")
	harness := testfixtures.NewSQLiteHarness(t, sqlite.WithIDGenerator(rows.NextFunc()), sqlite.WithClock(clock.NowFunc()))

	repo := persistence.AttendanceRepository(harness.Attendance)
	if attendance != nil {
		repo = attendance(harness)
	}

	a := newApp(harness.Storage, repo,
		testfixtures.NewIDGenerator("group").NextFunc(),
		testfixtures.NewIDGenerator("att").NextFunc(),
		clock.NowFunc(), testLogger)
	return &testServer{t: t, handler: a.handler(), clock: clock, app: a}
}

func (s *testServer) do(method, path string, body any) (int, map[string]any) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	}
	return rec.Code, payload
}

func tuesdayGroup() map[string]any {
	return map[string]any{
		"mentor_id":   "mentor-1",
		"weekday":     1,
		"start_time":  "08:00",
		"end_time":    "10:00",
		"location":    "Library",
		"valid_from":  "2024-01-01",
		"valid_until": "2024-01-31",
	}
}

func sessionIDs(t *testing.T, payload map[string]any) []string {
	t.Helper()
	raw, ok := payload["sessions"].([]any)
	require.True(t, ok, "sessions missing from %v", payload)
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		ids = append(ids, item.(map[string]any)["id"].(string))
	}
	return ids
}

func TestSchedulerEndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)

	status, group := srv.do(http.MethodPost, "/projects/project-1/groups", tuesdayGroup())
	require.Equal(t, http.StatusCreated, status, group)
	groupID := group["id"].(string)
	assert.Equal(t, float64(5), group["session_count"])

	status, listed := srv.do(http.MethodGet, "/sessions?group_id="+groupID, nil)
	require.Equal(t, http.StatusOK, status)
	ids := sessionIDs(t, listed)
	require.Len(t, ids, 5)

	dates := make([]string, 0, len(ids))
	for _, item := range listed["sessions"].([]any) {
		session := item.(map[string]any)
		dates = append(dates, session["date"].(string))
		assert.Equal(t, "pending", session["status"])
	}
	assert.Equal(t, []string{"2024-01-02", "2024-01-09", "2024-01-16", "2024-01-23", "2024-01-30"}, dates)

	sessionPath := "/projects/project-1/groups/" + groupID + "/sessions/"

	status, completed := srv.do(http.MethodPost, sessionPath+ids[0]+"/complete", map[string]any{"notes": "covered chapter 2"})
	require.Equal(t, http.StatusOK, status, completed)
	assert.Equal(t, "completed", completed["status"])
	assert.Equal(t, true, completed["terminal"])

	status, conflict := srv.do(http.MethodPost, sessionPath+ids[0]+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status, conflict)
	assert.Equal(t, "INVALID_TRANSITION", conflict["error_code"])

	status, _ = srv.do(http.MethodPost, sessionPath+ids[1]+"/cancel", map[string]any{"notes": "holiday"})
	require.Equal(t, http.StatusOK, status)

	status, _ = srv.do(http.MethodPost, "/projects/other-project/groups/"+groupID+"/sessions/"+ids[2]+"/complete", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// 2024-01-02 completed and 2024-01-16 pending produce records; the
	// cancelled 2024-01-09 session is skipped; later dates have not elapsed.
	status, sweep := srv.do(http.MethodPost, "/attendance/sweep", nil)
	require.Equal(t, http.StatusOK, status, sweep)
	assert.Len(t, sweep["created"], 2)
	assert.Equal(t, float64(1), sweep["skipped"])

	status, rerun := srv.do(http.MethodPost, "/attendance/sweep", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, rerun["created"])
	assert.Equal(t, float64(0), rerun["skipped"])

	status, summary := srv.do(http.MethodGet, "/attendance/summary?project_id=project-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(4), summary["total_hours"])
	assert.Equal(t, float64(4), summary["unconfirmed_hours"])
	assert.Equal(t, float64(2), summary["record_count"])

	status, records := srv.do(http.MethodGet, "/attendance?mentor_id=mentor-1", nil)
	require.Equal(t, http.StatusOK, status)
	list := records["records"].([]any)
	require.Len(t, list, 2)
	newest := list[0].(map[string]any)
	assert.Equal(t, "2024-01-16", newest["date"])

	recordID := newest["id"].(string)
	status, confirmed := srv.do(http.MethodPost, "/attendance/"+recordID+"/confirm", map[string]any{"confirmed_by": "coordinator"})
	require.Equal(t, http.StatusOK, status, confirmed)
	assert.Equal(t, true, confirmed["is_confirmed"])

	status, again := srv.do(http.MethodPost, "/attendance/"+recordID+"/confirm", map[string]any{"confirmed_by": "someone-else"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "coordinator", again["confirmed_by"])
	assert.Equal(t, confirmed["confirmed_at"], again["confirmed_at"])
}

func TestSummaryReflectsOutcomeChanges(t *testing.T) {
	srv := newTestServer(t, nil)

	status, group := srv.do(http.MethodPost, "/projects/project-1/groups", tuesdayGroup())
	require.Equal(t, http.StatusCreated, status, group)
	groupID := group["id"].(string)

	status, listed := srv.do(http.MethodGet, "/sessions?group_id="+groupID, nil)
	require.Equal(t, http.StatusOK, status)
	ids := sessionIDs(t, listed)

	status, logged := srv.do(http.MethodPost, "/attendance", map[string]any{
		"session_id": ids[0],
		"mentor_id":  "mentor-1",
		"project_id": "project-1",
		"hours":      2,
		"date":       "2024-01-02",
	})
	require.Equal(t, http.StatusCreated, status, logged)

	status, before := srv.do(http.MethodGet, "/attendance/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"pending": float64(2)}, before["by_status"])

	status, _ = srv.do(http.MethodPost, "/projects/project-1/groups/"+groupID+"/sessions/"+ids[0]+"/complete", nil)
	require.Equal(t, http.StatusOK, status)

	status, after := srv.do(http.MethodGet, "/attendance/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"completed": float64(2)}, after["by_status"])

	// A week later the 9th, 16th and 23rd have elapsed; the 2nd already has
	// a manual record.
	srv.clock.Advance(7 * 24 * time.Hour)
	status, sweep := srv.do(http.MethodPost, "/attendance/sweep", nil)
	require.Equal(t, http.StatusOK, status, sweep)
	assert.Len(t, sweep["created"], 3)
	assert.Equal(t, float64(1), sweep["skipped"])

	status, swept := srv.do(http.MethodGet, "/attendance/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"completed": float64(2), "pending": float64(6)}, swept["by_status"])
}

func TestSchedulerBatchAndRules(t *testing.T) {
	srv := newTestServer(t, nil)

	batch := tuesdayGroup()
	delete(batch, "weekday")
	batch["weekdays"] = []int{3, 1, 3}

	status, result := srv.do(http.MethodPost, "/projects/project-1/groups/batch", batch)
	require.Equal(t, http.StatusCreated, status, result)
	assert.Equal(t, "succeeded", result["outcome"])
	assert.Equal(t, "2 of 2 groups created", result["summary"])
	created := result["created"].([]any)
	require.Len(t, created, 2)

	tuesday := created[0].(map[string]any)
	groupID := tuesday["id"].(string)

	rule := tuesdayGroup()
	delete(rule, "mentor_id")
	rule["weekday"] = 4
	rule["mode"] = "remote"
	status, extended := srv.do(http.MethodPost, "/projects/project-1/groups/"+groupID+"/rules", rule)
	require.Equal(t, http.StatusCreated, status, extended)
	assert.Len(t, extended["rules"], 2)
	assert.Equal(t, float64(5+4), extended["session_count"])

	status, fetched := srv.do(http.MethodGet, "/projects/project-1/groups/"+groupID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, extended["session_count"], fetched["session_count"])

	status, _ = srv.do(http.MethodGet, "/projects/project-2/groups/"+groupID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	invalid := tuesdayGroup()
	invalid["end_time"] = "07:00"
	status, vErr := srv.do(http.MethodPost, "/projects/project-1/groups", invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, vErr["errors"], "end_time")
}

func TestSchedulerRedisAttendance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	srv := newTestServer(t, func(*testfixtures.SQLiteHarness) persistence.AttendanceRepository {
		repo, err := redisstore.NewAttendanceRepository(&redisstore.Config{RedisClient: client})
		require.NoError(t, err)
		return repo
	})

	status, _ := srv.do(http.MethodPost, "/projects/project-1/groups", tuesdayGroup())
	require.Equal(t, http.StatusCreated, status)

	status, logged := srv.do(http.MethodPost, "/attendance", map[string]any{
		"mentor_id":  "mentor-1",
		"project_id": "project-1",
		"hours":      1.5,
		"date":       "2024-01-05",
	})
	require.Equal(t, http.StatusCreated, status, logged)
	assert.True(t, mr.Exists("attendance:"+logged["id"].(string)))

	status, sweep := srv.do(http.MethodPost, "/attendance/sweep", nil)
	require.Equal(t, http.StatusOK, status, sweep)
	assert.Len(t, sweep["created"], 3)

	status, summary := srv.do(http.MethodGet, "/attendance/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7.5), summary["total_hours"])
	assert.Equal(t, float64(4), summary["record_count"])
}

func TestSweeperStopsWithContext(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.app.runSweeper(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestULIDGeneratorIsSortable(t *testing.T) {
	next := newULIDGenerator()
	prev := next()
	for i := 0; i < 100; i++ {
		id := next()
		require.Len(t, id, 26)
		require.Greater(t, id, prev)
		prev = id
	}
}
