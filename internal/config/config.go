package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Database Database       `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Report   ReportConfig   `toml:"report"`
	Reminder ReminderConfig `toml:"reminder"`
	Log      LogConfig      `toml:"log"`
}

type Database struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
}

type ServerConfig struct {
	Addr    string `toml:"addr"`
	BaseURL string `toml:"base_url"`
}

type ReportConfig struct {
	MaxMemoWidth int    `toml:"max_memo_width"`
	MemoWrap     string `toml:"memo_wrap"` // "runes" or "bytes"
	WithMemos    bool   `toml:"with_memos"`
}

type ReminderConfig struct {
	IntervalMinutes int    `toml:"interval_minutes"`
	WorkStart       string `toml:"work_start"`
	WorkEnd         string `toml:"work_end"`
	WorkDays        []int  `toml:"work_days"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

func DefaultConfig() Config {
	return Config{
		Database: Database{
			Driver: DriverSQLite,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
		},
		Report: ReportConfig{
			MaxMemoWidth: 20,
			MemoWrap:     "runes",
		},
		Reminder: ReminderConfig{
			IntervalMinutes: 60,
			WorkStart:       "09:00",
			WorkEnd:         "17:00",
			WorkDays:        []int{1, 2, 3, 4, 5},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "timecard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDBPath is where the SQLite database lives when [database] path is unset.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "timecard", "timecard.db"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Database.Driver == DriverSQLite && cfg.Database.Path == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = p
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			cfg.Database.Driver = DriverPostgres
		}
	}
	if v := os.Getenv("TIMECARD_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("TIMECARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks values that would otherwise fail late, deep inside a command.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be sqlite or postgres", c.Database.Driver))
	}

	if c.Report.MaxMemoWidth < 0 {
		errs = append(errs, fmt.Errorf("report.max_memo_width must not be negative, got %d", c.Report.MaxMemoWidth))
	}
	switch strings.ToLower(c.Report.MemoWrap) {
	case "", "runes", "bytes":
	default:
		errs = append(errs, fmt.Errorf("report.memo_wrap %q must be runes or bytes", c.Report.MemoWrap))
	}

	if c.Reminder.IntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("reminder.interval_minutes must be positive, got %d", c.Reminder.IntervalMinutes))
	}
	if _, err := time.Parse("15:04", c.Reminder.WorkStart); err != nil {
		errs = append(errs, fmt.Errorf("reminder.work_start %q must be HH:MM", c.Reminder.WorkStart))
	}
	if _, err := time.Parse("15:04", c.Reminder.WorkEnd); err != nil {
		errs = append(errs, fmt.Errorf("reminder.work_end %q must be HH:MM", c.Reminder.WorkEnd))
	}
	for _, d := range c.Reminder.WorkDays {
		if d < 1 || d > 7 {
			errs = append(errs, fmt.Errorf("reminder.work_days: %d is not an ISO weekday (1=Monday..7=Sunday)", d))
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return lvl, nil
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Save writes cfg to path as TOML.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
