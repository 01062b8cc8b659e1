package report

import (
	"strconv"
	"strings"

	"github.com/christopherklint97/timecard/internal/week"
)

// RowKind distinguishes hour rows from the memo rows that follow them.
type RowKind int

const (
	HourRow RowKind = iota
	MemoRow
)

// Row is one rendered table line. Alternate is set on every other project so
// outputs can stripe them; a memo row shares its project's value.
type Row struct {
	Kind      RowKind
	Cells     []string
	Alternate bool
}

type Table struct {
	Header []string
	Rows   []Row
}

// Header returns the fixed report header.
func Header() []string {
	h := make([]string, 0, len(week.Days)+1)
	h = append(h, "Project")
	return append(h, week.Days[:]...)
}

// Render lays rows out as a table. Projects with no positive weekday total are
// dropped; memo rows are added when withMemos is set and the project has any.
func Render(rows []AggregatedRow, withMemos bool) Table {
	t := Table{Header: Header()}

	project := 0
	for _, r := range rows {
		if !r.HasHours() {
			continue
		}
		alt := project%2 == 1
		project++

		cells := make([]string, 0, len(week.Days)+1)
		cells = append(cells, r.Code)
		for _, h := range r.Hours {
			cells = append(cells, FormatHours(h))
		}
		t.Rows = append(t.Rows, Row{Kind: HourRow, Cells: cells, Alternate: alt})

		if withMemos && r.HasMemos() {
			memos := make([]string, 0, len(week.Days)+1)
			memos = append(memos, " ")
			memos = append(memos, r.Memos[:]...)
			t.Rows = append(t.Rows, Row{Kind: MemoRow, Cells: memos, Alternate: alt})
		}
	}

	return t
}

// FormatHours prints h with at most two decimals and at least one: 2 → "2.0",
// 2.5 → "2.5", 1/3 → "0.33".
func FormatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}
