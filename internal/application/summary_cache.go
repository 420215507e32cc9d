package application

import (
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/mentorship-scheduler/internal/attendance"
)

// summaryCache keeps recently computed attendance summaries for repeated
// queries with the same filter. Every attendance write and session outcome
// change invalidates it. A summary computed before the latest invalidation is
// never stored.
type summaryCache struct {
	mu         sync.Mutex
	generation uint64
	entries    *expirable.LRU[string, attendance.Summary]
}

func newSummaryCache(ttl time.Duration, maxEntries int) *summaryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &summaryCache{
		entries: expirable.NewLRU[string, attendance.Summary](maxEntries, nil, ttl),
	}
}

// Generation identifies the cache contents. Read it before loading the data a
// summary is computed from and hand it back to Store.
func (c *summaryCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *summaryCache) Get(key string) (attendance.Summary, bool) {
	if c == nil {
		return attendance.Summary{}, false
	}
	summary, ok := c.entries.Get(key)
	if !ok {
		return attendance.Summary{}, false
	}
	return cloneSummary(summary), true
}

// Store caches summary unless the cache was invalidated after generation was
// read.
func (c *summaryCache) Store(key string, generation uint64, summary attendance.Summary) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.entries.Add(key, cloneSummary(summary))
	return true
}

func (c *summaryCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	c.entries.Purge()
	c.mu.Unlock()
}

func cloneSummary(summary attendance.Summary) attendance.Summary {
	summary.ByMentor = maps.Clone(summary.ByMentor)
	summary.ByProject = maps.Clone(summary.ByProject)
	summary.BySession = maps.Clone(summary.BySession)
	summary.ByStatus = maps.Clone(summary.ByStatus)
	summary.SessionDurations = maps.Clone(summary.SessionDurations)
	return summary
}

func buildSummaryCacheKey(filter AttendanceFilter) string {
	var confirmed string
	if filter.Confirmed != nil {
		confirmed = strconv.FormatBool(*filter.Confirmed)
	}
	var from, to string
	if filter.From != nil {
		from = filter.From.UTC().Format(time.RFC3339Nano)
	}
	if filter.To != nil {
		to = filter.To.UTC().Format(time.RFC3339Nano)
	}

	return strings.Join([]string{
		filter.MentorID,
		filter.ProjectID,
		filter.SessionID,
		confirmed,
		from,
		to,
	}, "|")
}
