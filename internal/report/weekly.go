package report

import (
	"context"
	"fmt"
	"time"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/week"
)

// Source supplies entries whose start falls in the half-open range [start, end).
type Source interface {
	EntriesBetween(ctx context.Context, start, end string) ([]model.Entry, error)
}

type BuildOptions struct {
	Options
	WithMemos bool
}

// Weekly is a finished report for one calendar week.
type Weekly struct {
	Window  week.Window
	Rows    []AggregatedRow
	Table   Table
	Skipped []SkipError
	// Totals and Total cover only the projects shown in Table.
	Totals [7]float64
	Total  float64
}

// Build resolves the week weeksAgo weeks before today, fetches its entries
// once from src and aggregates them.
func Build(ctx context.Context, src Source, today time.Time, weeksAgo int, opts BuildOptions) (*Weekly, error) {
	window, err := week.Resolve(today, weeksAgo)
	if err != nil {
		return nil, err
	}

	start, end := window.Bounds()
	entries, err := src.EntriesBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching entries for %s: %w", window, err)
	}

	return FromEntries(window, entries, opts), nil
}

// FromEntries aggregates entries already fetched for window.
func FromEntries(window week.Window, entries []model.Entry, opts BuildOptions) *Weekly {
	res := Aggregate(entries, opts.Options)

	w := &Weekly{
		Window:  window,
		Rows:    res.Rows,
		Table:   Render(res.Rows, opts.WithMemos),
		Skipped: res.Skipped,
	}
	for _, r := range res.Rows {
		if !r.HasHours() {
			continue
		}
		for i, h := range r.Hours {
			w.Totals[i] += h
			w.Total += h
		}
	}
	return w
}
