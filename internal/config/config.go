// Package config provides runtime configuration values for the console, the CLI and the mock API.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration knobs for the web console and its API client.
type Config struct {
	HTTPAddr        string
	APIBaseURL      string
	APITimeout      time.Duration
	ShutdownTimeout time.Duration
	CookieSecure    bool
	CookieMaxAge    int
	TokenFile       string
	LogLevel        string
	LogFormat       string
	Mock            MockConfig
}

// MockConfig configures the development product API.
type MockConfig struct {
	Addr      string
	JWTSecret string
	// Users maps username to plain-text password; hashed at startup.
	Users    map[string]string
	TokenTTL time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// parseUsers reads "user:pass,user2:pass2". Malformed pairs are skipped.
func parseUsers(v string) map[string]string {
	users := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		name, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" {
			continue
		}
		users[name] = pass
	}
	return users
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".product-console-token.json"
	}
	return filepath.Join(dir, "product-console", "token.json")
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":4000"),
		APIBaseURL:      strings.TrimRight(getenv("API_BASE_URL", "http://localhost:3000"), "/"),
		APITimeout:      durenvms("API_TIMEOUT_MS", 10000),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		CookieSecure:    boolenv("COOKIE_SECURE", false),
		CookieMaxAge:    atoienv("COOKIE_MAX_AGE", 3600*24*3),
		TokenFile:       getenv("TOKEN_FILE", defaultTokenFile()),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		Mock: MockConfig{
			Addr:      getenv("MOCK_ADDR", ":3000"),
			JWTSecret: getenv("MOCK_JWT_SECRET", "dev-secret"),
			Users:     parseUsers(getenv("MOCK_USERS", "admin:admin")),
			TokenTTL:  durenvs("MOCK_TOKEN_TTL", 3600*72),
		},
	}
}

// LoadFile loads an optional .env file into the environment and then calls Load.
// A missing file is not an error; variables already set win over the file.
func LoadFile(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	return Load(), nil
}
