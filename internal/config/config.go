package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config describes all runtime settings for the client.
//
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
		Level  string // debug|info|warn|error
	}

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	WS struct {
		URL                  string
		HandshakeTimeout     time.Duration
		ReconnectDelay       time.Duration
		MaxReconnectAttempts int
		HeartbeatInterval    time.Duration
		AutoConnect          bool
	}

	Credentials struct {
		Store   string // sqlite|redis|memory
		Profile string
	}

	SQLite struct {
		Path string
	}

	Redis struct {
		Addr    string
		DB      int
		CredTTL time.Duration
	}

	Guest struct {
		LanguageID int
	}
}

// LoadFromEnv reads .env (when present) and then the process environment.
// Real environment variables win over the file.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Format = envString("LOG_FORMAT", "text")
	c.Log.Level = envString("LOG_LEVEL", "info")

	c.API.BaseURL = envString("API_BASE_URL", "http://localhost:8080/api/v1")
	c.API.Timeout = envDuration("HTTP_TIMEOUT", 10*time.Second)

	c.WS.URL = envString("WS_URL", "ws://localhost:8080/ws")
	c.WS.HandshakeTimeout = envDuration("WS_HANDSHAKE_TIMEOUT", 10*time.Second)
	c.WS.ReconnectDelay = envDuration("WS_RECONNECT_DELAY", 3*time.Second)
	c.WS.MaxReconnectAttempts = envInt("WS_MAX_RECONNECT", 5)
	c.WS.HeartbeatInterval = envDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second)
	c.WS.AutoConnect = envBool("WS_AUTOCONNECT", true)

	c.Credentials.Store = envString("CRED_STORE", "sqlite")
	c.Credentials.Profile = envString("CRED_PROFILE", "default")

	c.SQLite.Path = envString("SQLITE_PATH", "dictation.db")

	c.Redis.Addr = envString("REDIS_ADDR", "localhost:6379")
	c.Redis.DB = envInt("REDIS_DB", 0)
	c.Redis.CredTTL = envDuration("REDIS_CRED_TTL", 30*24*time.Hour)

	c.Guest.LanguageID = envInt("GUEST_LANGUAGE_ID", 1)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if err := checkURL("API_BASE_URL", c.API.BaseURL, "http", "https"); err != nil {
		return err
	}
	if err := checkURL("WS_URL", c.WS.URL, "ws", "wss"); err != nil {
		return err
	}
	if c.WS.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("WS_MAX_RECONNECT must be positive, got %d", c.WS.MaxReconnectAttempts)
	}
	if c.WS.ReconnectDelay <= 0 {
		return errors.New("WS_RECONNECT_DELAY must be positive")
	}
	if c.WS.HeartbeatInterval < 0 {
		return errors.New("WS_HEARTBEAT_INTERVAL must not be negative")
	}

	switch c.Credentials.Store {
	case "sqlite":
		if c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH is empty")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is empty")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported CRED_STORE=%q (want sqlite|redis|memory)", c.Credentials.Store)
	}
	if c.Credentials.Profile == "" {
		return errors.New("CRED_PROFILE is empty")
	}

	if c.Guest.LanguageID <= 0 {
		return fmt.Errorf("GUEST_LANGUAGE_ID must be positive, got %d", c.Guest.LanguageID)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("unsupported LOG_LEVEL=%q (want debug|info|warn|error)", c.Log.Level)
	}
	return l, nil
}

func checkURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("%s=%q has no host", key, raw)
			}
			return nil
		}
	}
	return fmt.Errorf("%s=%q: scheme must be one of %s", key, raw, strings.Join(schemes, "|"))
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
