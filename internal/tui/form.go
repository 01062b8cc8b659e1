package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/timefmt"
)

type formField int

const (
	fieldDay formField = iota
	fieldStart
	fieldStop
	fieldCode
	fieldMemo
	fieldCount
)

const suggestionLimit = 5

var fieldLabels = [fieldCount]string{"Day", "Start", "Stop", "Project", "Memo"}

// formModel collects one entry. The memo is a textarea; every other field is
// a single-line input.
type formModel struct {
	inputs   [fieldMemo]textinput.Model
	memo     textarea.Model
	focus    formField
	projects []model.Project
	filtered []model.Project
	today    time.Time
	err      string
}

func newFormModel(today time.Time, projects []model.Project, prefill model.Entry) formModel {
	var inputs [fieldMemo]textinput.Model
	placeholders := [fieldMemo]string{"today, yesterday, 2024-01-08, last friday", "0900", "1730", "Search project..."}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 64
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldDay].SetValue("today")
	inputs[fieldCode].SetValue(prefill.Code)

	ta := textarea.New()
	ta.Placeholder = "Describe what you worked on..."
	ta.CharLimit = 500
	ta.SetWidth(60)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.SetValue(prefill.Memo)

	m := formModel{
		inputs:   inputs,
		memo:     ta,
		projects: projects,
		today:    today,
	}
	m.applyFilter()
	m.focusField(fieldStart)
	return m
}

func (m *formModel) focusField(f formField) tea.Cmd {
	m.focus = f
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.memo.Blur()
	if f == fieldMemo {
		return m.memo.Focus()
	}
	return m.inputs[f].Focus()
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab":
			if m.focus == fieldCode && len(m.filtered) > 0 {
				m.inputs[fieldCode].SetValue(m.filtered[0].Code)
			}
			return m, m.focusField((m.focus + 1) % fieldCount)
		case "shift+tab":
			return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldMemo {
		m.memo, cmd = m.memo.Update(msg)
		return m, cmd
	}

	prev := m.inputs[fieldCode].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[fieldCode].Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

func (m *formModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.inputs[fieldCode].Value()))
	m.filtered = m.filtered[:0]
	for _, p := range m.projects {
		if query == "" ||
			strings.Contains(strings.ToLower(p.Code), query) ||
			strings.Contains(strings.ToLower(p.Name), query) {
			m.filtered = append(m.filtered, p)
		}
	}
}

// Entry validates the form and builds the entry it describes.
func (m formModel) Entry() (model.Entry, error) {
	day, err := timefmt.ResolveDay(m.inputs[fieldDay].Value(), m.today)
	if err != nil {
		return model.Entry{}, err
	}
	clock := func(f formField) string {
		return strings.ReplaceAll(strings.TrimSpace(m.inputs[f].Value()), ":", "")
	}
	return timefmt.NewEntry(day,
		clock(fieldStart),
		clock(fieldStop),
		strings.TrimSpace(m.inputs[fieldCode].Value()),
		strings.TrimSpace(m.memo.Value()),
	)
}

func (m formModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("timecard · New Entry"))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render(m.today.Format("Monday, 2006-01-02")))
	sb.WriteString("\n\n")

	for f := fieldDay; f < fieldMemo; f++ {
		sb.WriteString(m.label(f))
		sb.WriteString(m.inputs[f].View())
		sb.WriteString("\n")

		if f == fieldCode && m.focus == fieldCode {
			sb.WriteString(m.suggestions())
		}
	}
	sb.WriteString(m.label(fieldMemo))
	sb.WriteString("\n")
	sb.WriteString(m.memo.View())
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("Error: ") + m.err)
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("Tab/Shift+Tab: move • Ctrl+S: save • Esc/Ctrl+C: cancel"))
	return boxStyle.Render(sb.String())
}

func (m formModel) label(f formField) string {
	if f == m.focus {
		return focusedLabelStyle.Render(fieldLabels[f])
	}
	return labelStyle.Render(fieldLabels[f])
}

func (m formModel) suggestions() string {
	if len(m.filtered) == 0 {
		if len(m.projects) > 0 {
			return dimStyle.Render("        no matching project") + "\n"
		}
		return ""
	}

	var sb strings.Builder
	for i, p := range m.filtered[:min(suggestionLimit, len(m.filtered))] {
		line := fmt.Sprintf("        %-10s %s", p.Code, p.Name)
		if i == 0 {
			line = highlightStyle.Render(line)
		} else {
			line = dimStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
