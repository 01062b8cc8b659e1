package main

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/store"
	"github.com/christopherklint97/timecard/internal/timefmt"
	"github.com/christopherklint97/timecard/internal/tui"
)

var entryCmd = &cobra.Command{
	Use:   "entry START STOP CODE [MEMO]",
	Short: "Add a time entry for today (times as HHMM, e.g. 0900 1730)",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runEntry(cmd, s.repo, time.Now(), "today", args)
		})
	},
}

var backdateCmd = &cobra.Command{
	Use:   "backdate DATE START STOP CODE [MEMO]",
	Short: "Add a time entry on another day (today, yesterday, tomorrow, YYYY-MM-DD, \"last friday\")",
	Args:  cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runEntry(cmd, s.repo, time.Now(), args[0], args[1:])
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a time entry interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		same, _ := cmd.Flags().GetBool("same")
		return withSession(cmd, func(s *session) error {
			return runLog(cmd, s.repo, time.Now(), same)
		})
	},
}

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Display the most recent entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runLast(cmd, s.repo)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the most recent entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runDeleteLast(cmd, s.repo)
		})
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete-entry ID",
	Short: "Delete an entry by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runDeleteEntry(cmd, s.repo, args[0])
		})
	},
}

func init() {
	logCmd.Flags().Bool("same", false, "Prefill the project and memo from the last entry")
}

// runEntry adds one entry on the day named by dayArg. args holds START STOP
// CODE and an optional MEMO.
func runEntry(cmd *cobra.Command, repo store.Repository, now time.Time, dayArg string, args []string) error {
	day, err := timefmt.ResolveDay(dayArg, now)
	if err != nil {
		return err
	}

	var memo string
	if len(args) > 3 {
		memo = args[3]
	}
	entry, err := timefmt.NewEntry(day, args[0], args[1], args[2], memo)
	if err != nil {
		return err
	}

	if _, err := repo.CreateEntry(cmd.Context(), &entry); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Entry submitted. (#%d %s %s–%s %s)\n",
		entry.IDValue(), entry.WeekDay, entry.Start, entry.Stop[11:16], entry.Code)
	return nil
}

func runLog(cmd *cobra.Command, repo store.Repository, now time.Time, same bool) error {
	ctx := cmd.Context()

	projects, err := repo.Projects(ctx)
	if err != nil {
		return fmt.Errorf("fetching projects: %w", err)
	}

	var prefill model.Entry
	if same {
		last, err := repo.LastEntry(ctx)
		if err != nil {
			return fmt.Errorf("getting last entry: %w", err)
		}
		prefill = model.Entry{Code: last.Code, Memo: last.Memo}
	}

	app := tui.NewApp(now, projects, repo, prefill)
	p := tea.NewProgram(app, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if res := app.GetResult(); res != nil && res.Canceled {
		fmt.Fprintln(cmd.OutOrStdout(), "Entry skipped.")
	}
	return nil
}

func runLast(cmd *cobra.Command, repo store.Repository) error {
	e, err := repo.LastEntry(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, listTable(useColor(out),
		[]string{"Id", "Start Time", "Stop Time", "Week Day", "Code", "Memo"},
		[][]string{{strconv.FormatInt(e.IDValue(), 10), e.Start, e.Stop, e.WeekDay, e.Code, e.Memo}},
	))
	return nil
}

func runDeleteLast(cmd *cobra.Command, repo store.Repository) error {
	if err := repo.DeleteLastEntry(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Most recent entry deleted.")
	return nil
}

func runDeleteEntry(cmd *cobra.Command, repo store.Repository, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid entry id %q", arg)
	}
	if err := repo.DeleteEntry(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Entry %d deleted.\n", id)
	return nil
}

var listHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var listCellStyle = lipgloss.NewStyle().Padding(0, 1)

// listTable renders a plain bordered table with a bold header.
func listTable(color bool, header []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return listCellStyle
		})
	if !color {
		return t.String()
	}
	return t.BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).String()
}
