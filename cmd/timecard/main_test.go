package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/timecard/internal/config"
	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/report"
	"github.com/christopherklint97/timecard/internal/store"
	"github.com/christopherklint97/timecard/internal/week"
)

var testNow = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func newTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

func newTestRepo(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "timecard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunEntry(t *testing.T) {
	repo := newTestRepo(t)
	cmd, out := newTestCmd(t)

	require.NoError(t, runEntry(cmd, repo, testNow, "today", []string{"0900", "1730", "20-008", "planning"}))
	assert.Equal(t, "Entry submitted. (#1 Wed 2024-01-10 09:00:00–17:30 20-008)\n", out.String())

	last, err := repo.LastEntry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10 17:30:00", last.Stop)
	assert.Equal(t, "planning", last.Memo)
}

func TestRunEntryBackdate(t *testing.T) {
	repo := newTestRepo(t)
	cmd, _ := newTestCmd(t)

	require.NoError(t, runEntry(cmd, repo, testNow, "yesterday", []string{"0800", "0930", "20-008"}))
	require.NoError(t, runEntry(cmd, repo, testNow, "2024-01-05", []string{"1000", "1100", "20-009"}))

	e, err := repo.Entry(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09 08:00:00", e.Start)
	assert.Equal(t, "Tue", e.WeekDay)

	e, err = repo.Entry(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Fri", e.WeekDay)
}

func TestRunEntryErrors(t *testing.T) {
	repo := newTestRepo(t)
	cmd, _ := newTestCmd(t)

	assert.Error(t, runEntry(cmd, repo, testNow, "today", []string{"9x00", "1000", "20-008"}))
	assert.Error(t, runEntry(cmd, repo, testNow, "today", []string{"0900", "2560", "20-008"}))
	assert.Error(t, runEntry(cmd, repo, testNow, "today", []string{"0900", "1000", " "}))

	entries, err := repo.EntriesBetween(context.Background(), "2000-01-01 00:00:00", "2100-01-01 00:00:00")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunLastAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	cmd, out := newTestCmd(t)

	assert.ErrorIs(t, runLast(cmd, repo), store.ErrNotFound)

	require.NoError(t, runEntry(cmd, repo, testNow, "today", []string{"0900", "1000", "20-008", "first"}))
	require.NoError(t, runEntry(cmd, repo, testNow, "today", []string{"1000", "1100", "20-009", "second"}))
	out.Reset()

	require.NoError(t, runLast(cmd, repo))
	assert.Contains(t, out.String(), "20-009")
	assert.Contains(t, out.String(), "second")
	assert.Contains(t, out.String(), "Week Day")

	out.Reset()
	require.NoError(t, runDeleteLast(cmd, repo))
	assert.Equal(t, "Most recent entry deleted.\n", out.String())

	out.Reset()
	require.NoError(t, runDeleteEntry(cmd, repo, "1"))
	assert.Equal(t, "Entry 1 deleted.\n", out.String())

	assert.ErrorIs(t, runDeleteEntry(cmd, repo, "1"), store.ErrNotFound)
	assert.Error(t, runDeleteEntry(cmd, repo, "one"))
	assert.ErrorIs(t, runDeleteLast(cmd, repo), store.ErrNotFound)
}

func TestRunProjects(t *testing.T) {
	repo := newTestRepo(t)
	cmd, out := newTestCmd(t)

	require.NoError(t, runProjectList(cmd, repo))
	assert.Equal(t, "No projects found.\n", out.String())

	out.Reset()
	require.NoError(t, runProjectAdd(cmd, repo, "Website", "20-008"))
	assert.Equal(t, "Project saved.\n", out.String())
	assert.ErrorIs(t, runProjectAdd(cmd, repo, "Again", "20-008"), store.ErrDuplicateCode)

	out.Reset()
	require.NoError(t, runProjectList(cmd, repo))
	assert.Contains(t, out.String(), "Website")
	assert.Contains(t, out.String(), "20-008")

	out.Reset()
	require.NoError(t, runProjectDelete(cmd, repo, "20-008"))
	assert.Equal(t, "Project deleted.\n", out.String())
	assert.ErrorIs(t, runProjectDelete(cmd, repo, "20-008"), store.ErrNotFound)
}

func seedWeek(t *testing.T, repo store.Repository) {
	t.Helper()
	entries := []model.Entry{
		{Start: "2024-01-08 09:00:00", Stop: "2024-01-08 11:00:00", WeekDay: "Mon", Code: "20-008", Memo: "api"},
		{Start: "2024-01-09 13:00:00", Stop: "2024-01-09 14:00:00", WeekDay: "Tue", Code: "20-008"},
		{Start: "2024-01-09 09:00:00", Stop: "2024-01-09 09:30:00", WeekDay: "Tue", Code: "20-009", Memo: "standup"},
		{Start: "2024-01-02 09:00:00", Stop: "2024-01-02 17:00:00", WeekDay: "Tue", Code: "old"},
	}
	for i := range entries {
		_, err := repo.CreateEntry(context.Background(), &entries[i])
		require.NoError(t, err)
	}
}

func textWeek(withMemos bool) weekOptions {
	return weekOptions{
		build: report.BuildOptions{
			Options:   report.Options{MaxMemoWidth: 20, Wrap: report.WrapRunes},
			WithMemos: withMemos,
		},
		format: report.FormatText,
	}
}

func TestRunWeekText(t *testing.T) {
	repo := newTestRepo(t)
	seedWeek(t, repo)
	cmd, out := newTestCmd(t)

	require.NoError(t, runWeek(cmd, repo, testNow, 0, textWeek(false)))
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "Week 2024-01-07 – 2024-01-13\n"))
	assert.Contains(t, s, "20-008")
	assert.Contains(t, s, "20-009")
	assert.NotContains(t, s, "old")
	assert.NotContains(t, s, "standup")
	assert.Contains(t, s, "Total: 3.5 h")

	out.Reset()
	require.NoError(t, runWeek(cmd, repo, testNow, 0, textWeek(true)))
	assert.Contains(t, out.String(), "standup")
}

func TestRunWeekEmptyAndInvalid(t *testing.T) {
	repo := newTestRepo(t)
	cmd, out := newTestCmd(t)

	require.NoError(t, runWeek(cmd, repo, testNow, 3, textWeek(false)))
	assert.Contains(t, out.String(), "No time entries for the selected week.")

	assert.Error(t, runWeek(cmd, repo, testNow, -1, textWeek(false)))
}

func TestRunWeekCSVToFile(t *testing.T) {
	repo := newTestRepo(t)
	seedWeek(t, repo)
	cmd, _ := newTestCmd(t)

	opts := textWeek(false)
	opts.format = report.FormatCSV
	opts.output = filepath.Join(t.TempDir(), "week.csv")

	require.NoError(t, runWeek(cmd, repo, testNow, 0, opts))

	data, err := os.ReadFile(opts.output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Project,Sun,Mon,Tue,Wed,Thu,Fri,Sat", lines[0])
	assert.Equal(t, "20-008,0.0,2.0,1.0,0.0,0.0,0.0,0.0", lines[1])
	assert.Equal(t, "20-009,0.0,0.0,0.5,0.0,0.0,0.0,0.0", lines[2])
}

func TestRunWeekPDF(t *testing.T) {
	repo := newTestRepo(t)
	seedWeek(t, repo)
	cmd, out := newTestCmd(t)

	opts := textWeek(true)
	opts.format = report.FormatPDF
	opts.output = filepath.Join(t.TempDir(), "week.pdf")

	require.NoError(t, runWeek(cmd, repo, testNow, 0, opts))
	assert.Contains(t, out.String(), "Report written to "+opts.output)

	info, err := os.Stat(opts.output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWeekOptionsFromFlags(t *testing.T) {
	cfg := config.DefaultConfig().Report
	cfg.WithMemos = true

	cmd := &cobra.Command{}
	addWeekFlags(cmd)

	opts, err := weekOptionsFromFlags(cmd, cfg)
	require.NoError(t, err)
	assert.True(t, opts.build.WithMemos)
	assert.Equal(t, report.FormatText, opts.format)
	assert.Equal(t, report.WrapRunes, opts.build.Wrap)

	require.NoError(t, cmd.Flags().Set("with-memos", "false"))
	require.NoError(t, cmd.Flags().Set("format", "json"))
	opts, err = weekOptionsFromFlags(cmd, cfg)
	require.NoError(t, err)
	assert.False(t, opts.build.WithMemos)
	assert.Equal(t, report.FormatJSON, opts.format)

	cfg.MemoWrap = "words"
	_, err = weekOptionsFromFlags(cmd, cfg)
	assert.Error(t, err)
}

func TestRunImportICS(t *testing.T) {
	repo := newTestRepo(t)
	cmd, out := newTestCmd(t)
	source := filepath.Join("..", "..", "internal", "calendar", "testdata", "week.ics")

	require.NoError(t, runImportICS(cmd, repo, testNow, source, "meet", 0, true))
	assert.Contains(t, out.String(), "Would import 3 entries")
	entries, err := repo.EntriesBetween(context.Background(), "2024-01-07 00:00:00", "2024-01-14 00:00:00")
	require.NoError(t, err)
	assert.Empty(t, entries)

	out.Reset()
	require.NoError(t, runImportICS(cmd, repo, testNow, source, "meet", 0, false))
	assert.Contains(t, out.String(), "Imported 3 entries")

	entries, err = repo.EntriesBetween(context.Background(), "2024-01-07 00:00:00", "2024-01-14 00:00:00")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Design review", entries[0].Memo)
	assert.Equal(t, "Sun", entries[0].WeekDay)
	assert.Equal(t, "Standup", entries[1].Memo)
	assert.Equal(t, "Pairing", entries[2].Memo)
	assert.Equal(t, "2024-01-11 10:00:00", entries[2].Start)
	for _, e := range entries {
		assert.Equal(t, "meet", e.Code)
	}
}

func TestRunImportICSSkipsEventsStartingBeforeWeek(t *testing.T) {
	repo := newTestRepo(t)
	cmd, out := newTestCmd(t)

	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//timecard//test//EN",
		"BEGIN:VEVENT",
		"UID:overnight@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240106T230000Z",
		"DTEND:20240107T010000Z",
		"SUMMARY:Release night",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:late@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240113T230000Z",
		"DTEND:20240114T003000Z",
		"SUMMARY:Late deploy",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	source := filepath.Join(t.TempDir(), "edge.ics")
	require.NoError(t, os.WriteFile(source, []byte(ics), 0o644))

	require.NoError(t, runImportICS(cmd, repo, testNow, source, "ops", 0, false))
	assert.Contains(t, out.String(), "Imported 1 entries")

	entries, err := repo.EntriesBetween(context.Background(), "2024-01-01 00:00:00", "2024-01-21 00:00:00")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Late deploy", entries[0].Memo)
	assert.Equal(t, "Sat", entries[0].WeekDay)
}

func TestRunImportICSMissingFile(t *testing.T) {
	repo := newTestRepo(t)
	cmd, _ := newTestCmd(t)
	assert.Error(t, runImportICS(cmd, repo, testNow, filepath.Join(t.TempDir(), "missing.ics"), "meet", 0, false))
}

func TestParseWeeksAgo(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr error
	}{
		{nil, 0, nil},
		{[]string{"0"}, 0, nil},
		{[]string{"3"}, 3, nil},
		{[]string{"-1"}, 0, week.ErrInvalidOffset},
	}
	for _, tt := range tests {
		n, err := parseWeeksAgo(tt.args)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "args %v", tt.args)
			continue
		}
		require.NoError(t, err, "args %v", tt.args)
		assert.Equal(t, tt.want, n)
	}

	_, err := parseWeeksAgo([]string{"last"})
	assert.ErrorContains(t, err, "must be an integer")
}

func TestWeekCommandNegativeOffset(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	rootCmd.SetArgs([]string{"week", "--", "-1"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, week.ErrInvalidOffset)

	rootCmd.SetArgs([]string{"week", "-1"})
	err = rootCmd.Execute()
	assert.ErrorContains(t, err, "unknown shorthand flag")
}

func TestOpenRepository(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "error"}, &bytes.Buffer{})

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "db.sqlite")
	repo, err := openRepository(context.Background(), &cfg, logger)
	require.NoError(t, err)
	_, ok := repo.(*store.DB)
	assert.True(t, ok)
	require.NoError(t, repo.Close())

	cfg.Server.BaseURL = "http://127.0.0.1:1"
	repo, err = openRepository(context.Background(), &cfg, logger)
	require.NoError(t, err)
	_, ok = repo.(*store.DB)
	assert.False(t, ok)
	require.NoError(t, repo.Close())
}

func TestUseColorNonTerminal(t *testing.T) {
	assert.False(t, useColor(&bytes.Buffer{}))
}
