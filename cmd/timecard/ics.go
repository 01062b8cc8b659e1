package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/timecard/internal/calendar"
	"github.com/christopherklint97/timecard/internal/store"
	"github.com/christopherklint97/timecard/internal/week"
)

var importICSCmd = &cobra.Command{
	Use:   "import-ics SOURCE",
	Short: "Import calendar events from an ICS file or URL as entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")
		weeksAgo, _ := cmd.Flags().GetInt("week")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		return withSession(cmd, func(s *session) error {
			return runImportICS(cmd, s.repo, time.Now(), args[0], code, weeksAgo, dryRun)
		})
	},
}

func init() {
	importICSCmd.Flags().String("code", "", "Project code to book the events on (required)")
	importICSCmd.Flags().Int("week", 0, "Import events from N weeks ago")
	importICSCmd.Flags().Bool("dry-run", false, "Print the entries without saving them")
	_ = importICSCmd.MarkFlagRequired("code")
}

func runImportICS(cmd *cobra.Command, repo store.Repository, now time.Time, source, code string, weeksAgo int, dryRun bool) error {
	window, err := week.Resolve(now, weeksAgo)
	if err != nil {
		return err
	}
	events, err := calendar.Fetch(cmd.Context(), source, window.Begin, window.Day(7), now.Location())
	if err != nil {
		return err
	}

	// Events running in from the previous week overlap the window but are
	// booked on their start day, which falls outside it.
	inWeek := events[:0]
	for _, ev := range events {
		if window.Contains(ev.StartTime) {
			inWeek = append(inWeek, ev)
		}
	}

	out := cmd.OutOrStdout()
	entries := calendar.ToEntries(inWeek, code, now.Location())
	for i := range entries {
		e := &entries[i]
		if !dryRun {
			if _, err := repo.CreateEntry(cmd.Context(), e); err != nil {
				return fmt.Errorf("saving %q: %w", e.Memo, err)
			}
		}
		fmt.Fprintf(out, "%s %s–%s %s %s\n", e.WeekDay, e.Start, e.Stop[11:16], e.Code, e.Memo)
	}

	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(out, "%s %d entries for week %s.\n", verb, len(entries), window)
	return nil
}
