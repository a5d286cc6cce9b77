package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the OD mail generator.
type Config struct {
	HTTPPort         int
	TimetableDir     string
	TimetableSources []string
	TimetableBaseURL string
	SQLiteDSN        string
	CacheTTL         time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ResolveWorkers   int
	FetchTimeout     time.Duration
	LogLevel         slog.Level
	LogFormat        string
}

// Defaults returns the configuration used when no variable is set.
func Defaults() Config {
	return Config{
		HTTPPort:         8080,
		TimetableDir:     "data",
		TimetableSources: []string{"timetable_updated.json", "timetable_custom.json"},
		CacheTTL:         5 * time.Minute,
		ResolveWorkers:   8,
		FetchTimeout:     10 * time.Second,
		LogLevel:         slog.LevelInfo,
		LogFormat:        "json",
	}
}

// LoadDotEnv loads variables from the given files, ".env" by default, without
// overriding variables already present in the environment. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Unset variables keep their defaults. Every malformed value is reported in a
// single error naming the offending variables.
func Load() (Config, error) {
	cfg := Defaults()
	invalid := make([]string, 0, 2)

	if portValue := env("OD_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "OD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dir := env("OD_TIMETABLE_DIR"); dir != "" {
		cfg.TimetableDir = dir
	}

	if sources := env("OD_TIMETABLE_SOURCES"); sources != "" {
		names := splitList(sources)
		if len(names) == 0 {
			invalid = append(invalid, "OD_TIMETABLE_SOURCES")
		} else {
			cfg.TimetableSources = names
		}
	}

	if base := env("OD_TIMETABLE_BASE_URL"); base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			invalid = append(invalid, "OD_TIMETABLE_BASE_URL")
		} else {
			cfg.TimetableBaseURL = strings.TrimRight(base, "/")
		}
	}

	cfg.SQLiteDSN = env("OD_TIMETABLE_SQLITE_DSN")

	if ttlValue := env("OD_TIMETABLE_CACHE_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl < 0 {
			invalid = append(invalid, "OD_TIMETABLE_CACHE_TTL")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	cfg.RedisAddr = env("OD_REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("OD_REDIS_PASSWORD")
	if dbValue := env("OD_REDIS_DB"); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "OD_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	if workersValue := env("OD_RESOLVE_WORKERS"); workersValue != "" {
		workers, err := strconv.Atoi(workersValue)
		if err != nil || workers <= 0 {
			invalid = append(invalid, "OD_RESOLVE_WORKERS")
		} else {
			cfg.ResolveWorkers = workers
		}
	}

	if timeoutValue := env("OD_FETCH_TIMEOUT"); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "OD_FETCH_TIMEOUT")
		} else {
			cfg.FetchTimeout = timeout
		}
	}

	if levelValue := env("OD_LOG_LEVEL"); levelValue != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "OD_LOG_LEVEL")
		}
	}

	if format := strings.ToLower(env("OD_LOG_FORMAT")); format != "" {
		if format != "json" && format != "text" {
			invalid = append(invalid, "OD_LOG_FORMAT")
		} else {
			cfg.LogFormat = format
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
