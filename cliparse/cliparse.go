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
)

type Config struct {
	Port             int
	AllowedOrigin    string
	DefaultTimeLimit int           // seconds
	MaxTimeLimit     int           // seconds
	Retention        time.Duration // how long ended polls stay joinable
	LogLevel         string
	LogFormat        string
}

// LoadEnvFile loads KEY=value pairs from path into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills in defaults from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var retention string

	fs := flag.NewFlagSet("quickly-pick-live", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.AllowedOrigin, "origin", "", "Allowed browser origin for WebSocket and CORS")
	fs.IntVar(&cfg.DefaultTimeLimit, "time-limit", 0, "Default poll time limit in seconds")
	fs.IntVar(&cfg.MaxTimeLimit, "max-time-limit", 0, "Maximum poll time limit in seconds")
	fs.StringVar(&retention, "retain", "", "How long ended polls stay joinable (e.g. 10m)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 5000)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = envString("CORS_ORIGIN", "http://localhost:3000")
	}
	if cfg.DefaultTimeLimit == 0 {
		limit, err := envInt("DEFAULT_TIME_LIMIT", 60)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultTimeLimit = limit
	}
	if cfg.MaxTimeLimit == 0 {
		limit, err := envInt("MAX_TIME_LIMIT", 3600)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxTimeLimit = limit
	}
	if retention == "" {
		retention = envString("POLL_RETENTION", "10m")
	}
	d, err := time.ParseDuration(retention)
	if err != nil {
		return Config{}, errors.New("invalid poll retention duration")
	}
	cfg.Retention = d
	if cfg.LogLevel == "" {
		cfg.LogLevel = envString("LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envString("LOG_FORMAT", "text")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("port must be between 1 and 65535")
	}
	if cfg.DefaultTimeLimit <= 0 {
		return Config{}, errors.New("default time limit must be positive")
	}
	if cfg.MaxTimeLimit < cfg.DefaultTimeLimit {
		return Config{}, errors.New("max time limit must not be below the default time limit")
	}
	if cfg.Retention < 0 {
		return Config{}, errors.New("poll retention must not be negative")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, errors.New("log format must be text or json")
	}

	return cfg, nil
}

// SlogLevel converts LogLevel for slog.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
