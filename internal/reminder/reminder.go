package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/christopherklint97/timecard/internal/config"
	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/store"
	"github.com/christopherklint97/timecard/internal/timefmt"
)

const appName = "timecard"

// LastEntrySource is the part of store.Repository the reminder reads.
type LastEntrySource interface {
	LastEntry(ctx context.Context) (*model.Entry, error)
}

// Notifier shows a desktop notification.
type Notifier func(title, message string) error

// SendNotification shows a desktop notification via the OS notifier.
func SendNotification(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Reminder nudges the user during work hours when nothing has been logged
// for a whole interval.
type Reminder struct {
	cfg    config.ReminderConfig
	src    LastEntrySource
	notify Notifier
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg config.ReminderConfig, src LastEntrySource, notify Notifier, logger *slog.Logger) *Reminder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notify == nil {
		notify = SendNotification
	}
	return &Reminder{
		cfg:    cfg,
		src:    src,
		notify: notify,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Reminder) interval() time.Duration {
	if r.cfg.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.cfg.IntervalMinutes) * time.Minute
}

// Run checks at every aligned interval tick until ctx is cancelled.
func (r *Reminder) Run(ctx context.Context) error {
	interval := r.interval()
	r.logger.Info("reminder started", "interval", interval, "work_start", r.cfg.WorkStart, "work_end", r.cfg.WorkEnd)

	for {
		next := nextAlignedTick(r.now(), interval)
		r.logger.Debug("next check", "at", next.Format("15:04"))

		select {
		case <-ctx.Done():
			r.logger.Info("reminder stopped")
			return nil
		case <-time.After(time.Until(next)):
		}

		if _, err := r.Check(ctx, r.now()); err != nil {
			r.logger.Warn("reminder check failed", "error", err)
		}
	}
}

// Check notifies if now is within work hours and the most recent entry
// stopped more than one interval ago. It reports whether a notification
// was sent.
func (r *Reminder) Check(ctx context.Context, now time.Time) (bool, error) {
	if !r.isWorkTime(now) {
		return false, nil
	}

	due, err := r.shouldRemind(ctx, now)
	if err != nil || !due {
		return false, err
	}

	if err := r.notify(appName, "Nothing logged in the last "+formatInterval(r.interval())+". What did you work on?"); err != nil {
		return false, fmt.Errorf("sending notification: %w", err)
	}
	r.logger.Info("reminder sent", "at", now.Format(timefmt.Layout))
	return true, nil
}

func (r *Reminder) shouldRemind(ctx context.Context, now time.Time) (bool, error) {
	last, err := r.src.LastEntry(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading last entry: %w", err)
	}

	// Stored timestamps are wall clock times without a zone.
	stop, err := time.ParseInLocation(timefmt.Layout, last.Stop, now.Location())
	if err != nil {
		return true, nil
	}
	return now.Sub(stop) >= r.interval(), nil
}

func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 60
	}

	midnight := timefmt.Midnight(now)
	elapsed := now.Hour()*60 + now.Minute()
	next := ((elapsed / mins) + 1) * mins

	return midnight.Add(time.Duration(next) * time.Minute)
}

func (r *Reminder) isWorkTime(t time.Time) bool {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}

	isWorkDay := false
	for _, d := range r.cfg.WorkDays {
		if d == weekday {
			isWorkDay = true
			break
		}
	}
	if !isWorkDay {
		return false
	}

	startH, startM := parseTime(r.cfg.WorkStart, 9)
	endH, endM := parseTime(r.cfg.WorkEnd, 17)

	nowMins := t.Hour()*60 + t.Minute()
	startMins := startH*60 + startM
	endMins := endH*60 + endM

	return nowMins >= startMins && nowMins <= endMins
}

func parseTime(s string, fallbackHour int) (int, int) {
	if len(s) == 5 && s[2] == ':' {
		h, errH := strconv.Atoi(s[:2])
		m, errM := strconv.Atoi(s[3:])
		if errH == nil && errM == nil {
			return h, m
		}
	}
	return fallbackHour, 0
}

func formatInterval(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "hour"
		}
		return strconv.Itoa(h) + " hours"
	}
	return strconv.Itoa(int(d/time.Minute)) + " minutes"
}
