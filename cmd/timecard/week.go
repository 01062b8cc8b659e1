package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/timecard/internal/config"
	"github.com/christopherklint97/timecard/internal/report"
	"github.com/christopherklint97/timecard/internal/store"
	"github.com/christopherklint97/timecard/internal/timefmt"
	"github.com/christopherklint97/timecard/internal/week"
)

var weekCmd = &cobra.Command{
	Use:   "week [N]",
	Short: "Print the weekly report for N weeks ago (default 0, the current week)",
	Long: `Print the weekly report for N weeks ago (default 0, the current week).

N must be 0 or greater. A leading "-" is read as a flag, so pass other
values after "--", e.g. "timecard week -- -1".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weeksAgo, err := parseWeeksAgo(args)
		if err != nil {
			return err
		}

		return withSession(cmd, func(s *session) error {
			opts, err := weekOptionsFromFlags(cmd, s.cfg.Report)
			if err != nil {
				return err
			}
			return runWeek(cmd, s.repo, time.Now(), weeksAgo, opts)
		})
	},
}

func init() {
	addWeekFlags(weekCmd)
}

func addWeekFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("with-memos", "m", false, "Add memo rows to the report")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, csv, json or pdf")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
}

// parseWeeksAgo reads the optional offset argument. Negative offsets fail
// here, before any config or database is opened.
func parseWeeksAgo(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("week value must be an integer, got %q", args[0])
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d (must be 0 or greater)", week.ErrInvalidOffset, n)
	}
	return n, nil
}

type weekOptions struct {
	build  report.BuildOptions
	format report.Format
	output string
}

func weekOptionsFromFlags(cmd *cobra.Command, cfg config.ReportConfig) (weekOptions, error) {
	wrap, err := report.ParseWrapMode(cfg.MemoWrap)
	if err != nil {
		return weekOptions{}, err
	}

	withMemos := cfg.WithMemos
	if cmd.Flags().Changed("with-memos") {
		withMemos, _ = cmd.Flags().GetBool("with-memos")
	}
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return weekOptions{}, err
	}
	output, _ := cmd.Flags().GetString("output")

	return weekOptions{
		build: report.BuildOptions{
			Options:   report.Options{MaxMemoWidth: cfg.MaxMemoWidth, Wrap: wrap},
			WithMemos: withMemos,
		},
		format: format,
		output: output,
	}, nil
}

func runWeek(cmd *cobra.Command, repo store.Repository, now time.Time, weeksAgo int, opts weekOptions) error {
	wk, err := report.Build(cmd.Context(), repo, now, weeksAgo, opts.build)
	if err != nil {
		return err
	}

	if opts.format == report.FormatPDF {
		path := opts.output
		if path == "" {
			path = fmt.Sprintf("timecard-%s.pdf", wk.Window.Begin.Format(timefmt.DateLayout))
		}
		if err := report.WritePDF(wk, "Timesheet", path); err != nil {
			return err
		}
		warnSkipped(cmd.ErrOrStderr(), wk)
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch opts.format {
	case report.FormatCSV:
		err = report.WriteCSV(out, wk.Table)
		warnSkipped(cmd.ErrOrStderr(), wk)
	case report.FormatJSON:
		err = report.WriteJSON(out, wk, opts.build.WithMemos)
	default:
		err = report.WriteText(out, wk, useColor(out))
	}
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func warnSkipped(w io.Writer, wk *report.Weekly) {
	for _, s := range wk.Skipped {
		fmt.Fprintln(w, "warning: skipped", s.Error())
	}
}
