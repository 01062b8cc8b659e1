package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/christopherklint97/timecard/internal/timefmt"
	"github.com/christopherklint97/timecard/internal/week"
)

// Format names an output encoding for the weekly report.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (supported: text, csv, json, pdf)", s)
}

// WriteCSV writes the rendered table, header first. Memo cells keep their
// embedded newlines and are quoted by the encoder.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(r.Cells); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Code  string    `json:"code"`
	Hours []float64 `json:"hours"`
	Memos []string  `json:"memos,omitempty"`
	Total float64   `json:"total"`
}

type jsonSkipped struct {
	ID    *int64 `json:"id,omitempty"`
	Code  string `json:"code"`
	Start string `json:"start"`
	Error string `json:"error"`
}

// JSONReport is the wire shape of a weekly report.
type JSONReport struct {
	WeekBegin string        `json:"week_begin"`
	WeekEnd   string        `json:"week_end"`
	Days      []string      `json:"days"`
	Rows      []jsonRow     `json:"rows"`
	Totals    []float64     `json:"totals"`
	Total     float64       `json:"total"`
	Skipped   []jsonSkipped `json:"skipped,omitempty"`
}

// ToJSON converts wk into its wire shape. Only projects with hours are listed;
// memos are included when withMemos is set.
func ToJSON(wk *Weekly, withMemos bool) JSONReport {
	out := JSONReport{
		WeekBegin: wk.Window.Begin.Format(timefmt.DateLayout),
		WeekEnd:   wk.Window.End.Format(timefmt.DateLayout),
		Days:      week.Days[:],
		Rows:      []jsonRow{},
		Totals:    wk.Totals[:],
		Total:     wk.Total,
	}
	for _, r := range wk.Rows {
		if !r.HasHours() {
			continue
		}
		row := jsonRow{Code: r.Code, Hours: append([]float64(nil), r.Hours[:]...), Total: r.Total()}
		if withMemos {
			row.Memos = append([]string(nil), r.Memos[:]...)
		}
		out.Rows = append(out.Rows, row)
	}
	for _, s := range wk.Skipped {
		out.Skipped = append(out.Skipped, jsonSkipped{
			ID:    s.Entry.ID,
			Code:  s.Entry.Code,
			Start: s.Entry.Start,
			Error: s.Err.Error(),
		})
	}
	return out
}

func WriteJSON(w io.Writer, wk *Weekly, withMemos bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToJSON(wk, withMemos))
}
