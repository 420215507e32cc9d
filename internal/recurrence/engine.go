package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Weekday identifies a day of the week with Monday as 0 and Sunday as 6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Valid reports whether the weekday is within 0..6.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// String returns the lower case English day name.
func (w Weekday) String() string {
	if !w.Valid() {
		return "weekday(" + strconv.Itoa(int(w)) + ")"
	}
	return weekdayNames[w]
}

// Time converts the weekday to the standard library representation.
func (w Weekday) Time() time.Weekday {
	return time.Weekday((int(w) + 1) % 7)
}

// WeekdayOf returns the Monday-based weekday of the given date.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Mode is the delivery mode of a session.
type Mode string

const (
	ModeInPerson Mode = "in-person"
	ModeRemote   Mode = "remote"
	ModeHybrid   Mode = "hybrid"
)

// Valid reports whether the mode is one of the supported values.
func (m Mode) Valid() bool {
	switch m {
	case ModeInPerson, ModeRemote, ModeHybrid:
		return true
	}
	return false
}

// Clock is a wall-clock time of day without date or zone.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ErrInvalidClock indicates a time of day string could not be parsed.
var ErrInvalidClock = errors.New("recurrence: invalid time of day")

// ErrInvalidDate indicates a calendar date string could not be parsed.
var ErrInvalidDate = errors.New("recurrence: invalid date")

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(value string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	fields := [3]int{}
	limits := [3]int{23, 59, 59}
	for i, part := range parts {
		if len(part) != 2 {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
		fields[i] = n
	}

	return Clock{Hour: fields[0], Minute: fields[1], Second: fields[2]}, nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Seconds returns the number of seconds since midnight.
func (c Clock) Seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// Before reports whether c is strictly earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Seconds() < other.Seconds()
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Rule describes a weekly recurrence attached to a group.
type Rule struct {
	ID         string
	GroupID    string
	Weekday    Weekday
	StartTime  Clock
	EndTime    Clock
	Location   string
	Mode       Mode
	ValidFrom  time.Time
	ValidUntil time.Time
}

// Session is an uncommitted dated instance produced from a rule.
type Session struct {
	GroupID   string
	RuleID    string
	Date      time.Time
	StartTime Clock
	EndTime   Clock
	Location  string
	Mode      Mode
}

// Expand produces one session per matching weekday between ValidFrom and
// ValidUntil, both inclusive. An inverted range yields no sessions.
func Expand(rule Rule) []Session {
	from := Day(rule.ValidFrom)
	until := Day(rule.ValidUntil)
	if from.After(until) || !rule.Weekday.Valid() {
		return nil
	}

	offset := (int(rule.Weekday) - int(WeekdayOf(from)) + 7) % 7
	current := from.AddDate(0, 0, offset)

	sessions := make([]Session, 0, int(until.Sub(from).Hours()/24)/7+1)
	for !current.After(until) {
		sessions = append(sessions, Session{
			GroupID:   rule.GroupID,
			RuleID:    rule.ID,
			Date:      current,
			StartTime: rule.StartTime,
			EndTime:   rule.EndTime,
			Location:  rule.Location,
			Mode:      rule.Mode,
		})
		current = current.AddDate(0, 0, 7)
	}

	return sessions
}

// ExpandAll expands every rule of a group and orders the result by date and
// start time. Rules are visited in the order given.
func ExpandAll(rules []Rule) []Session {
	var sessions []Session
	for _, rule := range rules {
		sessions = append(sessions, Expand(rule)...)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].StartTime.Before(sessions[j].StartTime)
		}
		return sessions[i].Date.Before(sessions[j].Date)
	})
	return sessions
}
