package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DBPath string // path to the SQLite database file (":memory:" for ephemeral)

	AdminPassword string        // password for the single admin account
	SessionTTL    time.Duration // lifetime of a login session

	// Redis session backend (optional; empty addr = in-process sessions)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Login rate limiting
	LoginRateBurst    int           // attempts allowed before throttling
	LoginRateInterval time.Duration // refill interval per attempt

	AllowedOrigins []string // origins allowed to call the API cross-site (bookmarklet)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// WordPress publish target (optional; empty base URL = publishing disabled)
	WPBaseURL        string
	WPUser           string
	WPAppPassword    string
	WPPostTags       string
	WPPostCategories string
}

// fileConfig mirrors the optional YAML config file. File values act as
// defaults; environment variables always win.
type fileConfig struct {
	ListenPort      string   `yaml:"listen_port"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	LogLevel        string   `yaml:"log_level"`
	PrettyLog       *bool    `yaml:"pretty_log"`
	DBPath          string   `yaml:"db_path"`
	AdminPassword   string   `yaml:"admin_password"`
	SessionTTL      string   `yaml:"session_ttl"`
	RedisAddr       string   `yaml:"redis_addr"`
	RedisPassword   string   `yaml:"redis_password"`
	RedisDB         *int     `yaml:"redis_db"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustProxy      *bool    `yaml:"trust_proxy"`
	WordPress       struct {
		BaseURL        string `yaml:"base_url"`
		User           string `yaml:"user"`
		AppPassword    string `yaml:"app_password"`
		PostTags       string `yaml:"post_tags"`
		PostCategories string `yaml:"post_categories"`
	} `yaml:"wordpress"`
}

// Load reads LINKHOARD_CONFIG_FILE (when set) and layers LINKHOARD_*
// environment variables on top. The admin password is the only required
// value.
func Load() *Config {
	file := loadFile(os.Getenv("LINKHOARD_CONFIG_FILE"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKHOARD_LISTEN_PORT", fallback(file.ListenPort, ":8080")),
		ShutdownTimeout: mustDuration("LINKHOARD_SHUTDOWN_TIMEOUT", fileDuration(file.ShutdownTimeout, 5*time.Second)),

		// Logging
		LogLevel:  getenv("LINKHOARD_LOG_LEVEL", fallback(file.LogLevel, "info")),
		PrettyLog: mustBool("LINKHOARD_PRETTY_LOG", fileBool(file.PrettyLog, false)),

		// Storage
		DBPath: getenv("LINKHOARD_DB_PATH", fallback(file.DBPath, "data/linkhoard.db")),

		// Auth
		AdminPassword: getenv("LINKHOARD_ADMIN_PASSWORD", file.AdminPassword),
		SessionTTL:    mustDuration("LINKHOARD_SESSION_TTL", fileDuration(file.SessionTTL, 720*time.Hour)),

		// Redis session backend
		RedisAddr:     getenv("LINKHOARD_REDIS_ADDR", file.RedisAddr),
		RedisPassword: getenv("LINKHOARD_REDIS_PASSWORD", file.RedisPassword),
		RedisDB:       getenvInt("LINKHOARD_REDIS_DB", fileInt(file.RedisDB, 0)),

		// Login rate limiting
		LoginRateBurst:    getenvInt("LINKHOARD_LOGIN_RATE_BURST", 5),
		LoginRateInterval: mustDuration("LINKHOARD_LOGIN_RATE_INTERVAL", time.Minute),

		// Access
		AllowedOrigins: envSlice("LINKHOARD_ALLOWED_ORIGINS", file.AllowedOrigins),
		TrustProxy:     mustBool("LINKHOARD_TRUST_PROXY", fileBool(file.TrustProxy, false)),

		// WordPress
		WPBaseURL:        getenv("LINKHOARD_WP_BASE_URL", file.WordPress.BaseURL),
		WPUser:           getenv("LINKHOARD_WP_USER", file.WordPress.User),
		WPAppPassword:    getenv("LINKHOARD_WP_APP_PASSWORD", file.WordPress.AppPassword),
		WPPostTags:       getenv("LINKHOARD_WP_POST_TAGS", file.WordPress.PostTags),
		WPPostCategories: getenv("LINKHOARD_WP_POST_CATEGORIES", file.WordPress.PostCategories),
	}

	if cfg.AdminPassword == "" {
		panic("❌ FATAL: LINKHOARD_ADMIN_PASSWORD is not set")
	}

	return cfg
}

func loadFile(path string) fileConfig {
	var file fileConfig
	if path == "" {
		return file
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Cannot read config file %s: %v", path, err))
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid config file %s: %v", path, err))
	}
	return file
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
		if b, err := strconv.ParseBool(v); err == nil {
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

func envSlice(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitAndTrim(v)
	}
	return def
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func fileBool(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func fileInt(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func fileDuration(v string, def time.Duration) time.Duration {
	if v != "" {
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
		trimmed := strings.Trim(strings.TrimSpace(part), `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
