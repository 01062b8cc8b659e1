// Package calendar imports timed events from iCalendar feeds as entries.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/timefmt"
)

type Event struct {
	Summary   string
	StartTime time.Time
	EndTime   time.Time
}

// Fetch reads source, an http(s) URL or a file path, and returns the timed
// events overlapping [windowStart, windowEnd). Floating times are read in
// loc. All-day events are ignored.
func Fetch(ctx context.Context, source string, windowStart, windowEnd time.Time, loc *time.Location) ([]Event, error) {
	r, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Decode(r, windowStart, windowEnd, loc)
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching calendar: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Decode parses every calendar in r. See Fetch.
func Decode(r io.Reader, windowStart, windowEnd time.Time, loc *time.Location) ([]Event, error) {
	if loc == nil {
		loc = time.Local
	}

	var events []Event
	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			ev, ok := timedEvent(ical.Event{Component: comp}, loc)
			if !ok {
				continue
			}
			if ev.StartTime.Before(windowEnd) && ev.EndTime.After(windowStart) {
				events = append(events, ev)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

// timedEvent reports false for all-day, malformed or untitled events.
func timedEvent(e ical.Event, loc *time.Location) (Event, bool) {
	dtstart := e.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil || dtstart.ValueType() == ical.ValueDate {
		return Event{}, false
	}

	start, err := e.DateTimeStart(loc)
	if err != nil {
		return Event{}, false
	}
	end, err := e.DateTimeEnd(loc)
	if err != nil {
		return Event{}, false
	}
	summary, _ := e.Props.Text(ical.PropSummary)
	if summary == "" {
		return Event{}, false
	}

	return Event{Summary: summary, StartTime: start, EndTime: end}, true
}

// ToEntries turns events into time entries booked on code, with wall clock
// times taken in loc. The event summary becomes the memo.
func ToEntries(events []Event, code string, loc *time.Location) []model.Entry {
	if loc == nil {
		loc = time.Local
	}
	entries := make([]model.Entry, 0, len(events))
	for _, e := range events {
		start := e.StartTime.In(loc)
		entries = append(entries, model.Entry{
			Start:   start.Format(timefmt.Layout),
			Stop:    e.EndTime.In(loc).Format(timefmt.Layout),
			WeekDay: timefmt.WeekdayLabel(start),
			Code:    code,
			Memo:    e.Summary,
		})
	}
	return entries
}
