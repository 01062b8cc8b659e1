package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/timecard/internal/reminder"
	"github.com/christopherklint97/timecard/internal/report"
	"github.com/christopherklint97/timecard/internal/server"
	"github.com/christopherklint97/timecard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the entry and project API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Log, cmd.ErrOrStderr())

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		wrap, err := report.ParseWrapMode(cfg.Report.MemoWrap)
		if err != nil {
			return err
		}

		repo, err := store.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer repo.Close()

		srv := server.New(repo, logger, server.Options{
			Report: report.Options{MaxMemoWidth: cfg.Report.MaxMemoWidth, Wrap: wrap},
		})
		return srv.Run(cmd.Context(), addr)
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send desktop reminders during work hours when nothing has been logged",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			if s.cfg.Reminder.IntervalMinutes <= 0 {
				return errors.New("reminder.interval_minutes must be positive")
			}
			r := reminder.New(s.cfg.Reminder, s.repo, nil, s.logger)
			cmd.Printf("Reminders every %d minutes, %s–%s. Ctrl+C to stop.\n",
				s.cfg.Reminder.IntervalMinutes, s.cfg.Reminder.WorkStart, s.cfg.Reminder.WorkEnd)
			return r.Run(cmd.Context())
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from [server] addr)")
}
