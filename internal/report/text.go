package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	evenStyle = cellStyle.
			Foreground(lipgloss.Color("15"))

	oddStyle = cellStyle.
			Foreground(lipgloss.Color("13"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

// TableString draws t as a bordered table. With color set, project rows
// alternate between white and magenta.
func TableString(t Table, color bool) string {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Cells
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		Headers(t.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if !color || row < 0 || row >= len(t.Rows) {
				return cellStyle
			}
			if t.Rows[row].Alternate {
				return oddStyle
			}
			return evenStyle
		})
	if color {
		tbl = tbl.BorderStyle(borderStyle)
	}

	return tbl.Render()
}

// WriteText prints the weekly report as a titled table followed by the week
// total and any skipped entries.
func WriteText(w io.Writer, wk *Weekly, color bool) error {
	title := "Week " + wk.Window.String()
	if color {
		title = titleStyle.Render(title)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	if len(wk.Table.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "No time entries for the selected week."); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, TableString(wk.Table, color)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Total: %s h\n", FormatHours(wk.Total)); err != nil {
			return err
		}
	}

	for _, s := range wk.Skipped {
		line := "skipped " + s.Error()
		if color {
			line = warningStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
