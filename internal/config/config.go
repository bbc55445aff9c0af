package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Backend settings
	APIURL     string        `toml:"api_url"`
	APITimeout time.Duration `toml:"-"`
	RateLimit  float64       `toml:"rate_limit"` // requests per second, 0 disables

	// Chat settings
	Sender string `toml:"sender"`

	// Recommendation settings
	UserID          string `toml:"user_id"`
	Recommendations int    `toml:"recommendations"`

	// Terminal settings
	InputHistoryPath string `toml:"input_history"`
	RenderMarkdown   bool   `toml:"render_markdown"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Timeout in seconds as written in the config file
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Environment variables consulted by LoadEnv. VITE_API_URL is honoured so a
// checkout of the web client's .env.local points both clients at the same
// backend.
const (
	EnvAPIURL   = "SHELFCHAT_API_URL"
	EnvViteURL  = "VITE_API_URL"
	EnvSender   = "SHELFCHAT_SENDER"
	EnvLogLevel = "SHELFCHAT_LOG_LEVEL"
	EnvTimeout  = "SHELFCHAT_TIMEOUT"
)

// DefaultAPIURL is the loopback address both backends listen on.
const DefaultAPIURL = "http://localhost:8000"

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		APIURL:     DefaultAPIURL,
		APITimeout: 30 * time.Second,
		RateLimit:  4,

		Sender: "user1",

		Recommendations: 12,

		InputHistoryPath: expandHome("~/.shelfchat/input_history"),
		RenderMarkdown:   true,

		LogLevel:  "warn",
		LogFormat: "pretty",
	}
}

// DefaultFilePath is where LoadFile looks when no path is given.
func DefaultFilePath() string {
	return expandHome("~/.shelfchat/config.toml")
}

// LoadFile overlays values from a TOML file. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		path = DefaultFilePath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if c.TimeoutSeconds > 0 {
		c.APITimeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	c.InputHistoryPath = expandHome(c.InputHistoryPath)
	return nil
}

// LoadEnv loads dotenv files (missing ones are skipped) and overlays
// environment variables. Variables already set in the process win over the
// dotenv files.
func (c *Config) LoadEnv(dotenvFiles ...string) error {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if v := GetEnv(EnvViteURL); v != "" {
		c.APIURL = v
	}
	if v := GetEnv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := GetEnv(EnvSender); v != "" {
		c.Sender = v
	}
	if v := GetEnv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := GetEnv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number of seconds: %w", EnvTimeout, err)
		}
		c.APITimeout = time.Duration(secs) * time.Second
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api URL cannot be empty")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api URL %q is not an absolute URL", c.APIURL)
	}
	if c.Sender == "" {
		return fmt.Errorf("sender cannot be empty")
	}
	if c.Recommendations < 1 {
		return fmt.Errorf("recommendation count must be at least 1")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	switch strings.ToLower(c.LogFormat) {
	case "pretty", "json":
	default:
		return fmt.Errorf("log format must be pretty or json, got %q", c.LogFormat)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}

// expandHome expands the ~ in file paths to the user's home directory
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir := getHomeDir()
		return homeDir + path[1:]
	}
	return path
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	if home := GetEnv("HOME"); home != "" {
		return home
	}
	// Fallback for Windows
	if home := GetEnv("USERPROFILE"); home != "" {
		return home
	}
	return "."
}

// GetEnv is a wrapper around os.Getenv for easier testing
var GetEnv = os.Getenv
