// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/session"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	LogLevel     slog.Level
	EnvFile      string
	QueueSize    int
	FeedSize     int

	Ranked session.Policy
	Binary session.Policy
}

// Policies returns the per-mode policies in the form the registry takes
func (c Config) Policies() map[models.Mode]session.Policy {
	return map[models.Mode]session.Policy{
		models.ModeRanked: c.Ranked,
		models.ModeBinary: c.Binary,
	}
}

// JournalEnabled reports whether a database was configured
func (c Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

// Built-in binary (skip) defaults
const (
	DefaultSkipDuration   = 5 * time.Minute
	DefaultSkipLockout    = 15 * time.Minute
	DefaultSkipCutoff     = 30 * time.Minute
	DefaultSkipCooldown   = 10 * time.Minute
	DefaultSkipReminder   = 2 * time.Minute
	DefaultSkipMinVotes   = 20
	DefaultSkipInstantWin = 50
	DefaultMapPoolSize    = 5
)

type durationOption struct {
	flag string
	env  string
	def  time.Duration
	dst  *time.Duration
}

type intOption struct {
	flag string
	env  string
	def  int
	dst  *int
}

// ParseFlags validates flags and falls back to the environment.
// Precedence is flag, then environment (including the env file), then the
// built-in default.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var logLevel, mapPool string

	fs := flag.NewFlagSet("roundvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Journal database URL (empty disables the journal)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.EnvFile, "env-file", "", "Env file to load (default .env when present)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&mapPool, "map-pool", "", "Comma-separated candidates drawn when a map vote starts without any (env MAP_POOL)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	durations := []durationOption{
		{"skip-duration", "SKIP_VOTE_DURATION", DefaultSkipDuration, &cfg.Binary.Timing.ActiveDuration},
		{"skip-lockout", "SKIP_START_LOCKOUT", DefaultSkipLockout, &cfg.Binary.Timing.StartLockout},
		{"skip-cutoff", "SKIP_ELIGIBILITY_CUTOFF", DefaultSkipCutoff, &cfg.Binary.Timing.EligibilityCutoff},
		{"skip-cooldown", "SKIP_COOLDOWN", DefaultSkipCooldown, &cfg.Binary.Timing.Cooldown},
		{"skip-reminder", "SKIP_REMINDER_INTERVAL", DefaultSkipReminder, &cfg.Binary.Timing.ReminderInterval},
		{"map-duration", "MAP_VOTE_DURATION", 0, &cfg.Ranked.Timing.ActiveDuration},
		{"map-lockout", "MAP_START_LOCKOUT", 0, &cfg.Ranked.Timing.StartLockout},
		{"map-cutoff", "MAP_ELIGIBILITY_CUTOFF", 0, &cfg.Ranked.Timing.EligibilityCutoff},
		{"map-cooldown", "MAP_COOLDOWN", 0, &cfg.Ranked.Timing.Cooldown},
		{"map-reminder", "MAP_REMINDER_INTERVAL", 0, &cfg.Ranked.Timing.ReminderInterval},
	}
	ints := []intOption{
		{"skip-min-votes", "SKIP_MIN_VOTES", DefaultSkipMinVotes, &cfg.Binary.Quorum},
		{"skip-instant-win", "SKIP_INSTANT_WIN", DefaultSkipInstantWin, &cfg.Binary.InstantWin},
		{"map-quorum", "MAP_QUORUM", 0, &cfg.Ranked.Quorum},
		{"map-pool-size", "MAP_POOL_SIZE", DefaultMapPoolSize, &cfg.Ranked.PoolSize},
		{"queue-size", "NOTIFY_QUEUE_SIZE", 256, &cfg.QueueSize},
		{"feed-size", "FEED_SIZE", 128, &cfg.FeedSize},
	}
	for _, o := range durations {
		fs.DurationVar(o.dst, o.flag, 0, fmt.Sprintf("%s (env %s, default %s)", o.flag, o.env, o.def))
	}
	for _, o := range ints {
		fs.IntVar(o.dst, o.flag, 0, fmt.Sprintf("%s (env %s, default %d)", o.flag, o.env, o.def))
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", logLevel)
		}
	}

	for _, o := range durations {
		if set[o.flag] {
			continue
		}
		*o.dst = o.def
		if v := os.Getenv(o.env); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s env variable: %w", o.env, err)
			}
			*o.dst = d
		}
	}
	for _, o := range ints {
		if set[o.flag] {
			continue
		}
		*o.dst = o.def
		if v := os.Getenv(o.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s env variable: %w", o.env, err)
			}
			*o.dst = n
		}
	}

	if mapPool == "" {
		mapPool = os.Getenv("MAP_POOL")
	}
	cfg.Ranked.CandidatePool = splitList(mapPool)

	if err := validatePolicy("skip", cfg.Binary); err != nil {
		return Config{}, err
	}
	if err := validatePolicy("map", cfg.Ranked); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	return cfg, nil
}

// loadEnvFile loads path, or .env when path is empty and the file exists.
// Variables already in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty entries
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validatePolicy(name string, p session.Policy) error {
	for _, d := range []time.Duration{
		p.Timing.ActiveDuration,
		p.Timing.StartLockout,
		p.Timing.EligibilityCutoff,
		p.Timing.Cooldown,
		p.Timing.ReminderInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s durations must not be negative", name)
		}
	}
	if p.Quorum < 0 || p.InstantWin < 0 || p.PoolSize < 0 {
		return fmt.Errorf("%s vote counts must not be negative", name)
	}
	return nil
}
