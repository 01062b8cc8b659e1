package report

import (
	"testing"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_TwoDaysOneProject(t *testing.T) {
	res := Aggregate([]model.Entry{
		entry("20-008", "Sun", "2024-01-07 09:00:00", "2024-01-07 11:00:00", ""),
		entry("20-008", "Mon", "2024-01-08 09:00:00", "2024-01-08 10:00:00", ""),
	}, Options{})

	tbl := Render(res.Rows, false)
	assert.Equal(t, []string{"Project", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"20-008", "2.0", "1.0", "0.0", "0.0", "0.0", "0.0", "0.0"}, tbl.Rows[0].Cells)
	assert.Equal(t, HourRow, tbl.Rows[0].Kind)
}

func TestRender_SuppressesAllZeroRows(t *testing.T) {
	rows := []AggregatedRow{
		{Code: "zero", Memos: [7]string{"; \n"}},
		{Code: "A", Hours: [7]float64{0, 0, 1.5}},
		{Code: "negative", Hours: [7]float64{-1}},
	}

	tbl := Render(rows, true)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "A", tbl.Rows[0].Cells[0])
}

func TestRender_MemoRows(t *testing.T) {
	rows := []AggregatedRow{
		{Code: "A", Hours: [7]float64{1}, Memos: [7]string{"standup; \n"}},
		{Code: "B", Hours: [7]float64{0, 2}},
		{Code: "C", Hours: [7]float64{0, 0, 3}, Memos: [7]string{"", "", "review; \n"}},
	}

	tbl := Render(rows, true)
	require.Len(t, tbl.Rows, 5)

	assert.Equal(t, HourRow, tbl.Rows[0].Kind)
	assert.Equal(t, MemoRow, tbl.Rows[1].Kind)
	assert.Equal(t, []string{" ", "standup; \n", "", "", "", "", "", ""}, tbl.Rows[1].Cells)
	assert.Equal(t, "B", tbl.Rows[2].Cells[0])
	assert.Equal(t, "C", tbl.Rows[3].Cells[0])
	assert.Equal(t, MemoRow, tbl.Rows[4].Kind)
	assert.Equal(t, "review; \n", tbl.Rows[4].Cells[3])

	without := Render(rows, false)
	assert.Len(t, without.Rows, 3)
}

func TestRender_AlternatesPerProject(t *testing.T) {
	rows := []AggregatedRow{
		{Code: "A", Hours: [7]float64{1}, Memos: [7]string{"x; \n"}},
		{Code: "skip"},
		{Code: "B", Hours: [7]float64{1}, Memos: [7]string{"y; \n"}},
		{Code: "C", Hours: [7]float64{1}},
	}

	tbl := Render(rows, true)
	require.Len(t, tbl.Rows, 5)
	alt := make([]bool, len(tbl.Rows))
	for i, r := range tbl.Rows {
		alt[i] = r.Alternate
	}
	assert.Equal(t, []bool{false, false, true, true, false}, alt)
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{2.5, "2.5"},
		{1.25, "1.25"},
		{1.0 / 3.0, "0.33"},
		{2.0 / 3.0, "0.67"},
		{-1, "-1.0"},
		{-0.001, "0.0"},
		{12.75, "12.75"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHours(tt.in), "FormatHours(%v)", tt.in)
	}
}
