package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the agent.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Realtime     RealtimeConfig
	Weather      WeatherConfig
	Bridge       BridgeConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// File enables a rotating file sink when non-empty.
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

// RealtimeConfig drives the hosted speech-to-speech session.
type RealtimeConfig struct {
	Enabled        bool
	APIKey         string
	BaseURL        string
	Model          string
	Voice          string
	Instructions   string
	ConnectTimeout time.Duration
}

// WeatherConfig points at the weather lookup endpoint.
type WeatherConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// BridgeConfig describes the auxiliary data-access subprocess.
type BridgeConfig struct {
	Command         string
	Args            []string
	ReadyTimeoutSec int
}

// NotificationConfig holds the Redis channel used for ticket update fan-out.
type NotificationConfig struct {
	Channel string
}

const defaultInstructions = "You are a friendly customer support assistant for a food delivery service. " +
	"Verify the caller by mobile number before discussing account details. Keep answers short and spoken-friendly."

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "voice-support-agent"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:          getEnv("LOG_LEVEL", "info"),
			File:           os.Getenv("LOG_FILE"),
			FileMaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 10),
			FileMaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 2),
			FileMaxAgeDays: getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 3),
		},
		Realtime: RealtimeConfig{
			Enabled:        getEnvAsBool("REALTIME_ENABLED", false),
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        getEnv("REALTIME_BASE_URL", "wss://api.openai.com/v1/realtime"),
			Model:          getEnv("REALTIME_MODEL", "gpt-realtime"),
			Voice:          getEnv("REALTIME_VOICE", "alloy"),
			Instructions:   getEnv("REALTIME_INSTRUCTIONS", defaultInstructions),
			ConnectTimeout: time.Duration(getEnvAsInt("REALTIME_CONNECT_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:        getEnv("WEATHER_BASE_URL", "https://wttr.in"),
			TimeoutSeconds: getEnvAsInt("WEATHER_TIMEOUT_SECONDS", 5),
		},
		Bridge: BridgeConfig{
			Command:         os.Getenv("BRIDGE_COMMAND"),
			Args:            splitArgs(os.Getenv("BRIDGE_ARGS")),
			ReadyTimeoutSec: getEnvAsInt("BRIDGE_READY_TIMEOUT_SECONDS", 10),
		},
		Notification: NotificationConfig{
			Channel: getEnv("NOTIFY_REDIS_CHANNEL", "support:ticket-events"),
		},
	}

	if cfg.Realtime.Enabled && cfg.Realtime.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY required when REALTIME_ENABLED is set")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ReadyTimeout returns the bridge readiness deadline.
func (b BridgeConfig) ReadyTimeout() time.Duration {
	if b.ReadyTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.ReadyTimeoutSec) * time.Second
}

// WeatherTimeout returns the outbound weather request deadline.
func (w WeatherConfig) WeatherTimeout() time.Duration {
	if w.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(w.TimeoutSeconds) * time.Second
}

func splitArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Fields(raw)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
