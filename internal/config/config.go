package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process level settings read from the environment. Site
// settings (routes, languages, targets) live in the settings file, see
// LoadSettings.
type Config struct {
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SettingsFile string        // path to the settings file (empty = search ./staticsite.yaml)
	HTTPTimeout  time.Duration // timeout for remote hash fetches (default: 30s)
	Hostname     string        // host name the site is rendered for (optional)
	Parallel     int           // default number of concurrent renders (default: 1)

	AllowedHosts []string // Host headers the site answers outside a render (default: localhost)
	ListenAddr   string   // address of the preview server (ex: ":8000")
}

// Load reads .env (when present) and the STATICSITE_* environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Logging
		LogLevel:  getenv("STATICSITE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STATICSITE_PRETTY_LOG", true),

		// Site
		SettingsFile: getenv("STATICSITE_CONFIG", ""),
		HTTPTimeout:  mustDuration("STATICSITE_HTTP_TIMEOUT", 30*time.Second),
		Hostname:     getenv("STATICSITE_HOSTNAME", ""),
		Parallel:     getenvInt("STATICSITE_PARALLEL_RENDER", 1),

		// Preview server
		AllowedHosts: splitAndTrim(getenv("STATICSITE_ALLOWED_HOSTS", "localhost,127.0.0.1")),
		ListenAddr:   getenv("STATICSITE_LISTEN_ADDR", "127.0.0.1:8000"),
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
