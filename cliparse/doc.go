// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5000)
  - AllowedOrigin: Browser origin allowed to connect (default: http://localhost:3000)
  - DefaultTimeLimit: Poll time limit when a request has none (default: 60s)
  - MaxTimeLimit: Largest accepted time limit (default: 3600s)
  - Retention: How long ended polls stay joinable (default: 10m)
  - LogLevel, LogFormat: slog settings (default: info, text)

# CLI Flags

	-p               Server port
	-origin          Allowed origin
	-time-limit      Default time limit in seconds
	-max-time-limit  Maximum time limit in seconds
	-retain          Retention, as a Go duration
	-log-level       debug, info, warn or error
	-log-format      text or json

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	CORS_ORIGIN        → -origin
	DEFAULT_TIME_LIMIT → -time-limit
	MAX_TIME_LIMIT     → -max-time-limit
	POLL_RETENTION     → -retain
	LOG_LEVEL          → -log-level
	LOG_FORMAT         → -log-format

CLI flags take precedence over environment variables. LoadEnvFile reads a
.env file into the environment first; variables already set are kept.

# Example

	// In main.go
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
