package report

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeaderColor = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor  = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfLineColor   = props.Color{Red: 200, Green: 200, Blue: 200}
	pdfAltColor    = props.Color{Red: 150, Green: 40, Blue: 150}
)

// 16-column grid: four columns for the project, two per weekday.
const (
	pdfGridSize    = 16
	pdfProjectCols = 4
	pdfDayCols     = 2
	pdfMemoHeight  = 4.0
)

// BuildPDF lays the weekly report out as a landscape A4 timesheet.
func BuildPDF(wk *Weekly, title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithMaxGridSize(pdfGridSize).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(pdfGridSize, title, props.Text{
			Style: fontstyle.Bold,
			Size:  16,
			Color: &pdfHeaderColor,
		}),
	)
	m.AddRow(8,
		text.NewCol(pdfGridSize, "Week "+wk.Window.String(), props.Text{
			Size:  11,
			Color: &pdfMutedColor,
		}),
	)
	m.AddRow(4, line.NewCol(pdfGridSize, props.Line{Color: &pdfLineColor}))

	header := []core.Col{text.NewCol(pdfProjectCols, wk.Table.Header[0], props.Text{Style: fontstyle.Bold, Size: 10})}
	for _, d := range wk.Table.Header[1:] {
		header = append(header, text.NewCol(pdfDayCols, d, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}))
	}
	m.AddRow(8, header...)

	for _, r := range wk.Table.Rows {
		color := &pdfHeaderColor
		if r.Alternate {
			color = &pdfAltColor
		}

		if r.Kind == MemoRow {
			lines := 1
			for _, c := range r.Cells[1:] {
				lines = max(lines, strings.Count(c, "\n")+1)
			}
			cols := []core.Col{text.NewCol(pdfProjectCols, "", props.Text{Size: 7})}
			for _, c := range r.Cells[1:] {
				cols = append(cols, text.NewCol(pdfDayCols, c, props.Text{Size: 7, Color: &pdfMutedColor}))
			}
			m.AddRow(pdfMemoHeight*float64(lines), cols...)
			continue
		}

		cols := []core.Col{text.NewCol(pdfProjectCols, r.Cells[0], props.Text{Size: 10, Color: color})}
		for _, c := range r.Cells[1:] {
			cols = append(cols, text.NewCol(pdfDayCols, c, props.Text{Size: 10, Align: align.Right, Color: color}))
		}
		m.AddRow(7, cols...)
	}

	m.AddRow(4, line.NewCol(pdfGridSize, props.Line{Color: &pdfLineColor}))
	totals := []core.Col{text.NewCol(pdfProjectCols, "Total "+FormatHours(wk.Total), props.Text{
		Style: fontstyle.Bold,
		Size:  11,
		Color: &pdfHeaderColor,
	})}
	for _, h := range wk.Totals {
		totals = append(totals, text.NewCol(pdfDayCols, FormatHours(h), props.Text{
			Style: fontstyle.Bold,
			Size:  10,
			Align: align.Right,
			Color: &pdfHeaderColor,
		}))
	}
	m.AddRow(9, totals...)

	return m
}

// WritePDF renders wk to a PDF file at path.
func WritePDF(wk *Weekly, title, path string) error {
	doc, err := BuildPDF(wk, title).Generate()
	if err != nil {
		return fmt.Errorf("generating PDF: %w", err)
	}
	if err := doc.Save(path); err != nil {
		return fmt.Errorf("saving PDF: %w", err)
	}
	return nil
}
