// ABOUTME: Configuration loader for the spendx client
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environments.
const (
	Development = "development"
	Production  = "production"
)

// Backend base URLs per environment. Production is fixed.
const (
	DefaultDevAPIURL = "http://localhost:8000"
	ProdAPIURL       = "https://api.spendx.io"
)

type Config struct {
	// Backend
	Env        string // development or production (default: production)
	APIBaseURL string // selected from Env; SPENDX_DEV_API_URL overrides the dev URL only
	AllProxy   string // ssh+socks5://user@host:port?private-key=/path (optional)

	// Local state
	ConfigDir string // credential and log directory (default: $XDG_CONFIG_HOME/spendx)
	CacheTTL  int    // seconds; 0 disables the response cache (default: 60)

	// Logging
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // text, json (default: text)
	LogFile   string // absolute, or relative to ConfigDir; empty logs to stderr
}

// IsDevelopment reports whether the client talks to a local backend.
func (c *Config) IsDevelopment() bool {
	return c.Env == Development
}

// CacheDuration returns CacheTTL as a duration.
func (c *Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// LogPath resolves LogFile against ConfigDir. Empty when file logging is off.
func (c *Config) LogPath() string {
	if c.LogFile == "" || filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.ConfigDir, c.LogFile)
}

// Load reads .env from the working directory if present, then the environment.
// Variables already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cacheTTL, err := getEnvInt("SPENDX_CACHE_TTL", 60)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:       strings.ToLower(getEnv("SPENDX_ENV", Production)),
		AllProxy:  os.Getenv("SPENDX_ALL_PROXY"),
		ConfigDir: os.Getenv("SPENDX_CONFIG_DIR"),
		CacheTTL:  cacheTTL,
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		LogFile:   os.Getenv("LOG_FILE"),
	}

	switch cfg.Env {
	case Development:
		cfg.APIBaseURL = ensureScheme(getEnv("SPENDX_DEV_API_URL", DefaultDevAPIURL))
	case Production:
		cfg.APIBaseURL = ProdAPIURL
	default:
		return nil, fmt.Errorf("SPENDX_ENV must be %q or %q, got %q", Development, Production, cfg.Env)
	}
	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		return nil, err
	}

	if cfg.ConfigDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine config directory, set SPENDX_CONFIG_DIR: %w", err)
		}
		cfg.ConfigDir = filepath.Join(dir, "spendx")
	}

	if cfg.CacheTTL < 0 || cfg.CacheTTL > 86400 {
		return nil, fmt.Errorf("SPENDX_CACHE_TTL must be between 0 and 86400, got %d", cfg.CacheTTL)
	}

	if cfg.AllProxy != "" && !strings.HasPrefix(cfg.AllProxy, "ssh+socks5://") {
		return nil, fmt.Errorf("SPENDX_ALL_PROXY must start with ssh+socks5://")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return intVal, nil
}

// ensureScheme adds http:// when a LAN address is given without one.
func ensureScheme(u string) string {
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	return "http://" + u
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: need http(s)://host[:port]", raw)
	}
	return nil
}
