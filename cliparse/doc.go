// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Journal connection string (optional)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - LogLevel: slog level (default: info)
  - QueueSize, FeedSize: notification queue and per-session feed capacity
  - Binary, Ranked: per-mode round policies

# Environment Variables

Flags fall back to environment variables, then to built-in defaults:

	PORT                   → -p
	DATABASE_URL           → -d
	DATABASE_TYPE          → -t
	ADMIN_KEY_SALT         → -admin-salt
	LOG_LEVEL              → -log-level
	SKIP_VOTE_DURATION     → -skip-duration     (5m)
	SKIP_START_LOCKOUT     → -skip-lockout      (15m)
	SKIP_ELIGIBILITY_CUTOFF → -skip-cutoff      (30m)
	SKIP_COOLDOWN          → -skip-cooldown     (10m)
	SKIP_REMINDER_INTERVAL → -skip-reminder     (2m)
	SKIP_MIN_VOTES         → -skip-min-votes    (20)
	SKIP_INSTANT_WIN       → -skip-instant-win  (50)
	MAP_VOTE_DURATION      → -map-duration      (none)
	MAP_QUORUM             → -map-quorum        (none)
	MAP_POOL               → -map-pool          (none)
	MAP_POOL_SIZE          → -map-pool-size     (5)

The map-lockout, map-cutoff, map-cooldown and map-reminder flags follow the
same pattern. A zero duration or count disables that rule. When a map vote
starts without candidates, up to MAP_POOL_SIZE distinct names are drawn at
random from MAP_POOL.

Before the environment is read, the file named by -env-file is loaded with
godotenv, or .env when present. Variables already set are not replaced.
*/
package cliparse
