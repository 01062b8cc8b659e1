package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/timefmt"
	"github.com/christopherklint97/timecard/internal/week"
)

// DefaultMemoWidth is the chunk width used when Options.MaxMemoWidth is not positive.
const DefaultMemoWidth = 20

// memoTerminator closes every entry's memo block inside a weekday bucket.
const memoTerminator = "; \n"

var (
	ErrEncoding       = errors.New("memo is not valid UTF-8")
	ErrUnknownWeekday = errors.New("unknown weekday label")
)

// WrapMode selects how memos are split into fixed-width chunks.
type WrapMode string

const (
	// WrapRunes splits on character boundaries.
	WrapRunes WrapMode = "runes"
	// WrapBytes splits every N bytes and can cut multi-byte characters in
	// half; such entries are skipped with ErrEncoding.
	WrapBytes WrapMode = "bytes"
)

// ParseWrapMode maps a config value to a WrapMode. Empty means WrapRunes.
func ParseWrapMode(s string) (WrapMode, error) {
	switch WrapMode(strings.ToLower(s)) {
	case "", WrapRunes:
		return WrapRunes, nil
	case WrapBytes:
		return WrapBytes, nil
	}
	return "", fmt.Errorf("unknown memo wrap mode %q (expected runes or bytes)", s)
}

type Options struct {
	MaxMemoWidth int
	Wrap         WrapMode
}

func (o Options) width() int {
	if o.MaxMemoWidth <= 0 {
		return DefaultMemoWidth
	}
	return o.MaxMemoWidth
}

// AggregatedRow holds one project's weekday totals, indexed like week.Days.
type AggregatedRow struct {
	Code  string
	Hours [7]float64
	Memos [7]string
}

// HasHours reports whether any weekday total is positive.
func (r AggregatedRow) HasHours() bool {
	for _, h := range r.Hours {
		if h > 0 {
			return true
		}
	}
	return false
}

// HasMemos reports whether any weekday memo is non-empty.
func (r AggregatedRow) HasMemos() bool {
	for _, m := range r.Memos {
		if m != "" {
			return true
		}
	}
	return false
}

// Total sums the row's weekday hours.
func (r AggregatedRow) Total() float64 {
	var sum float64
	for _, h := range r.Hours {
		sum += h
	}
	return sum
}

// SkipError records an entry that could not be aggregated.
type SkipError struct {
	Entry model.Entry
	Err   error
}

func (e SkipError) Error() string {
	if e.Entry.ID != nil {
		return fmt.Sprintf("entry %d (%s): %v", *e.Entry.ID, e.Entry.Code, e.Err)
	}
	return fmt.Sprintf("entry %s %s: %v", e.Entry.Code, e.Entry.Start, e.Err)
}

func (e SkipError) Unwrap() error { return e.Err }

type Result struct {
	Rows    []AggregatedRow
	Skipped []SkipError
}

// Aggregate groups entries by project code and weekday. Rows follow the order
// in which codes first appear in entries. Entries with unparseable timestamps,
// unknown weekday labels or undecodable memos are left out and reported in
// Result.Skipped.
func Aggregate(entries []model.Entry, opts Options) Result {
	var res Result
	index := make(map[string]int)

	for _, e := range entries {
		i, ok := index[e.Code]
		if !ok {
			i = len(res.Rows)
			index[e.Code] = i
			res.Rows = append(res.Rows, AggregatedRow{Code: e.Code})
		}

		day, hours, memo, err := contribution(e, opts)
		if err != nil {
			res.Skipped = append(res.Skipped, SkipError{Entry: e, Err: err})
			continue
		}

		row := &res.Rows[i]
		row.Hours[day] += hours
		row.Memos[day] += memo
	}

	return res
}

func contribution(e model.Entry, opts Options) (day int, hours float64, memo string, err error) {
	elapsed, err := timefmt.Elapsed(e.Start, e.Stop)
	if err != nil {
		return 0, 0, "", err
	}

	day, ok := week.Index(e.WeekDay)
	if !ok {
		return 0, 0, "", fmt.Errorf("%w: %q", ErrUnknownWeekday, e.WeekDay)
	}

	memo, err = WrapMemo(e.Memo, opts.width(), opts.Wrap)
	if err != nil {
		return 0, 0, "", err
	}

	return day, timefmt.Hours(elapsed), memo, nil
}

// WrapMemo splits memo into width-sized chunks, ending each full chunk with a
// newline, and closes the block with "; \n".
func WrapMemo(memo string, width int, mode WrapMode) (string, error) {
	if width <= 0 {
		width = DefaultMemoWidth
	}

	var chunks []string
	switch mode {
	case WrapBytes:
		for start := 0; start < len(memo); start += width {
			end := min(start+width, len(memo))
			chunk := memo[start:end]
			if !utf8.ValidString(chunk) {
				return "", fmt.Errorf("%w: chunk %q splits a character", ErrEncoding, chunk)
			}
			chunks = append(chunks, chunk)
		}
	default:
		if !utf8.ValidString(memo) {
			return "", ErrEncoding
		}
		runes := []rune(memo)
		for start := 0; start < len(runes); start += width {
			end := min(start+width, len(runes))
			chunks = append(chunks, string(runes[start:end]))
		}
	}

	var sb strings.Builder
	for _, chunk := range chunks {
		sb.WriteString(chunk)
		if chunkWidth(chunk, mode) >= width {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(memoTerminator)
	return sb.String(), nil
}

func chunkWidth(chunk string, mode WrapMode) int {
	if mode == WrapBytes {
		return len(chunk)
	}
	return utf8.RuneCountInString(chunk)
}
