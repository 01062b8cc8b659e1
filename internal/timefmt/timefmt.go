package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/tj/go-naturaldate"
)

const (
	// Layout is the canonical timestamp format stored for entries.
	Layout = "2006-01-02 15:04:05"
	// DateLayout is the calendar date format used on the command line and in API paths.
	DateLayout = "2006-01-02"
)

var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrInvalidClock       = errors.New("invalid clock time")
)

// ParseClock parses compact numeric time input such as "0900" or "930".
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 4 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, minute = n/100, n%100
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour, minute, nil
}

// Stamp formats day at hour:minute:00 in the canonical layout.
func Stamp(day time.Time, hour, minute int) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		day.Year(), int(day.Month()), day.Day(), hour, minute, 0)
}

// ParseTimestamp parses a canonical timestamp as a naive wall clock (UTC).
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return t, nil
}

// Elapsed returns stop minus start. Negative results are returned as-is.
func Elapsed(start, stop string) (time.Duration, error) {
	a, err := ParseTimestamp(start)
	if err != nil {
		return 0, err
	}
	b, err := ParseTimestamp(stop)
	if err != nil {
		return 0, err
	}
	return b.Sub(a), nil
}

// Hours converts d to fractional hours counting whole minutes only.
func Hours(d time.Duration) float64 {
	return float64(int64(d/time.Minute)) / 60.0
}

// WeekdayLabel returns the three-letter English weekday of t ("Sun".."Sat").
func WeekdayLabel(t time.Time) string {
	return t.Weekday().String()[:3]
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ResolveDay turns a day argument into a calendar date relative to today.
// Accepts "today", "yesterday", "tomorrow", YYYY-MM-DD, or natural language
// such as "last friday".
func ResolveDay(s string, today time.Time) (time.Time, error) {
	today = Midnight(today)
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	if t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), today.Location()); err == nil {
		return t, nil
	}

	t, err := naturaldate.Parse(s, today, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Midnight(t), nil
}

// NewEntry builds an entry on day from compact start/stop clock strings.
func NewEntry(day time.Time, start, stop, code, memo string) (model.Entry, error) {
	sh, sm, err := ParseClock(start)
	if err != nil {
		return model.Entry{}, fmt.Errorf("start time: %w", err)
	}
	eh, em, err := ParseClock(stop)
	if err != nil {
		return model.Entry{}, fmt.Errorf("stop time: %w", err)
	}
	if strings.TrimSpace(code) == "" {
		return model.Entry{}, errors.New("project code is required")
	}

	return model.Entry{
		Start:   Stamp(day, sh, sm),
		Stop:    Stamp(day, eh, em),
		WeekDay: WeekdayLabel(day),
		Code:    code,
		Memo:    memo,
	}, nil
}
