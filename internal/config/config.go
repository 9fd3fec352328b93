package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds presentation-service configuration.
type Config struct {
	AppEnv   string // APP_ENV
	AppHost  string // APP_HOST
	HTTPPort string // APP_PORT or HTTP_PORT
	LogLevel string // LOG_LEVEL

	// Talk deck
	TalkPath  string // TALK_PATH: YAML deck file
	TalkWatch bool   // TALK_WATCH: hot-reload the deck on file change

	// Clients
	MaxClients        int
	HeartbeatInterval time.Duration
	CleanupInterval   time.Duration

	// WebSocket
	WSReadBufferSize  int
	WSWriteBufferSize int
	WSMaxMessageSize  int64

	// Session journal (optional, PostgreSQL)
	JournalEnabled bool
	DB             struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

// Load loads config from environment (.env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	maxClients, _ := strconv.Atoi(getEnv("MAX_CLIENTS", "32"))
	heartbeat, _ := strconv.Atoi(getEnv("HEARTBEAT_INTERVAL", "30"))
	cleanup, _ := strconv.Atoi(getEnv("CLEANUP_INTERVAL", "30"))
	readBuf, _ := strconv.Atoi(getEnv("WS_READ_BUFFER_SIZE", "4096"))
	writeBuf, _ := strconv.Atoi(getEnv("WS_WRITE_BUFFER_SIZE", "4096"))
	maxMsg, _ := strconv.ParseInt(getEnv("WS_MAX_MESSAGE_SIZE", "65536"), 10, 64)

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		AppHost:           getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:          firstEnv("APP_PORT", "HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		TalkPath:          getEnv("TALK_PATH", "talk.yaml"),
		TalkWatch:         getEnv("TALK_WATCH", "true") == "true",
		MaxClients:        maxClients,
		HeartbeatInterval: time.Duration(heartbeat) * time.Second,
		CleanupInterval:   time.Duration(cleanup) * time.Second,
		WSReadBufferSize:  readBuf,
		WSWriteBufferSize: writeBuf,
		WSMaxMessageSize:  maxMsg,
		JournalEnabled:    getEnv("JOURNAL_ENABLED", "false") == "true",
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "presentation_service")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

// Validate checks required fields and production safety.
func (c *Config) Validate() error {
	if c.TalkPath == "" {
		return errors.New("config: TALK_PATH is required")
	}
	if c.MaxClients <= 0 {
		return errors.New("config: MAX_CLIENTS must be positive")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("config: HEARTBEAT_INTERVAL must be positive")
	}
	if c.JournalEnabled {
		if c.DB.Host == "" {
			return errors.New("config: DB_HOST is required when journal is enabled")
		}
		if c.DB.User == "" {
			return errors.New("config: DB_USER is required when journal is enabled")
		}
		if c.DB.Database == "" {
			return errors.New("config: DB_DATABASE is required when journal is enabled")
		}
		if c.AppEnv == "production" && c.DB.Password == "" {
			return errors.New("config: in production DB_PASSWORD is required")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

// DatabaseURL returns the postgres URL for golang-migrate.
func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	keys := keysAndDef[:len(keysAndDef)-1]
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
