package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/timecard/internal/model"
)

// Saver persists a finished entry.
type Saver interface {
	CreateEntry(ctx context.Context, e *model.Entry) (int64, error)
}

type viewState int

const (
	formView viewState = iota
	savingView
	confirmationView
)

type Result struct {
	Canceled bool
	Entry    *model.Entry
}

type savedMsg struct {
	entry model.Entry
	err   error
}

// App is the interactive entry form run by the log command.
type App struct {
	state   viewState
	form    formModel
	spinner spinner.Model
	result  *Result
	errMsg  string
	saver   Saver
}

// NewApp builds the form for today. prefill seeds the project and memo, for
// example from the last entry.
func NewApp(today time.Time, projects []model.Project, saver Saver, prefill model.Entry) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &App{
		state:   formView,
		form:    newFormModel(today, projects, prefill),
		spinner: s,
		saver:   saver,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.form.inputs[fieldStart].Focus(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (msg.String() == "esc" && a.state == formView) {
			a.result = &Result{Canceled: true}
			return a, tea.Quit
		}
	case savedMsg:
		return a.handleSaved(msg)
	}

	switch a.state {
	case formView:
		return a.updateForm(msg)
	case savingView:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case confirmationView:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}
	return a, nil
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+s" {
		entry, err := a.form.Entry()
		if err != nil {
			a.form.err = err.Error()
			return a, nil
		}
		a.form.err = ""
		a.state = savingView
		return a, tea.Batch(a.spinner.Tick, a.save(entry))
	}

	var cmd tea.Cmd
	a.form, cmd = a.form.Update(msg)
	return a, cmd
}

func (a *App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	a.state = confirmationView
	if msg.err != nil {
		a.errMsg = msg.err.Error()
		return a, nil
	}
	a.result = &Result{Entry: &msg.entry}
	return a, nil
}

func (a *App) save(entry model.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := a.saver.CreateEntry(ctx, &entry)
		return savedMsg{entry: entry, err: err}
	}
}

func (a *App) View() string {
	switch a.state {
	case formView:
		return a.form.View()
	case savingView:
		return a.spinner.View() + " Saving..."
	case confirmationView:
		if a.errMsg != "" {
			return errorStyle.Render("Error: ") + a.errMsg + "\n\n" + helpStyle.Render("Press any key to exit")
		}
		e := a.result.Entry
		return successStyle.Render("Entry logged!") + "\n" +
			fmt.Sprintf("%s  %s – %s  %s", e.Code, e.Start, e.Stop[len(e.Stop)-8:], e.Memo) + "\n\n" +
			helpStyle.Render("Press any key to exit")
	}
	return ""
}

func (a *App) GetResult() *Result {
	return a.result
}
