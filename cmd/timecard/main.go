package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/timecard/internal/client"
	"github.com/christopherklint97/timecard/internal/config"
	"github.com/christopherklint97/timecard/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "timecard",
	Short:        "Track working hours per project",
	Long:         "timecard records time entries against project codes and prints weekly hour reports.",
	SilenceUsage: true,
}

var (
	configFile string
	noColor    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/timecard/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(backdateCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(deleteEntryCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(importICSCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openRepository returns the remote client when a server base URL is
// configured, and the local database otherwise.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Repository, error) {
	if cfg.Server.BaseURL != "" {
		logger.Debug("using remote repository", "base_url", cfg.Server.BaseURL)
		return client.New(cfg.Server.BaseURL, time.Hour, logger), nil
	}

	logger.Debug("using local repository", "driver", cfg.Database.Driver)
	repo, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return repo, nil
}

// session bundles what most commands need.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   store.Repository
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log, os.Stderr)

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, repo: repo}, nil
}

func (s *session) Close() {
	if err := s.repo.Close(); err != nil {
		s.logger.Warn("closing repository", "error", err)
	}
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
