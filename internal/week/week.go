// Package week resolves Sunday-anchored calendar weeks.
package week

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/christopherklint97/timecard/internal/timefmt"
)

// Days lists the weekday labels in report order. Index 0 is the week start.
var Days = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var ErrInvalidOffset = errors.New("invalid week offset")

// Index returns the position of label in Days, ignoring case.
func Index(label string) (int, bool) {
	for i, d := range Days {
		if strings.EqualFold(d, strings.TrimSpace(label)) {
			return i, true
		}
	}
	return 0, false
}

// Window is an inclusive Sunday..Saturday calendar range.
type Window struct {
	Begin time.Time
	End   time.Time
}

// Resolve returns the week weeksAgo weeks before the one containing today.
func Resolve(today time.Time, weeksAgo int) (Window, error) {
	if weeksAgo < 0 {
		return Window{}, fmt.Errorf("%w: %d (must be 0 or greater)", ErrInvalidOffset, weeksAgo)
	}

	dow := int(today.Weekday())
	offset := dow + 7*weeksAgo
	begin := timefmt.Midnight(today).AddDate(0, 0, -offset)

	return Window{
		Begin: begin,
		End:   begin.AddDate(0, 0, 6),
	}, nil
}

// Bounds returns the half-open storage range [Begin 00:00:00, End+1 00:00:00)
// in canonical timestamp form.
func (w Window) Bounds() (start, end string) {
	return timefmt.Stamp(w.Begin, 0, 0), timefmt.Stamp(w.End.AddDate(0, 0, 1), 0, 0)
}

// Day returns the date i days after Begin (0 = Sunday, 7 = the next Sunday).
func (w Window) Day(i int) time.Time {
	return w.Begin.AddDate(0, 0, i)
}

// Contains reports whether t falls on a calendar day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := timefmt.Midnight(t.In(w.Begin.Location()))
	return !d.Before(w.Begin) && !d.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s – %s", w.Begin.Format(timefmt.DateLayout), w.End.Format(timefmt.DateLayout))
}
