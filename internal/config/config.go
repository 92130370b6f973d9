package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	SLA      SLAConfig
	Sweep    SweepConfig
	Alert    AlertConfig
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
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	MaxAdminSeats         int
}

// SLAConfig sets the priority → resolution window table in hours.
type SLAConfig struct {
	CriticalHours int
	HighHours     int
	MediumHours   int
	LowHours      int
}

// SweepConfig tunes the batch sweeps.
type SweepConfig struct {
	// NotifyWindowHours is how far ahead of the deadline reminders fire.
	NotifyWindowHours int
	// CooldownMinutes suppresses repeat sweep actions on the same issue.
	// Zero keeps the reference behavior of re-acting every pass.
	CooldownMinutes int
	// IntervalMinutes drives the optional in-process scheduler; zero
	// leaves sweeps to external triggers only.
	IntervalMinutes int
}

// AlertConfig holds stub notification endpoints.
type AlertConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "civic-issue-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			MaxAdminSeats:         getEnvAsInt("AUTH_MAX_ADMIN_SEATS", 2),
		},
		SLA: SLAConfig{
			CriticalHours: getEnvAsInt("SLA_CRITICAL_HOURS", 24),
			HighHours:     getEnvAsInt("SLA_HIGH_HOURS", 48),
			MediumHours:   getEnvAsInt("SLA_MEDIUM_HOURS", 72),
			LowHours:      getEnvAsInt("SLA_LOW_HOURS", 120),
		},
		Sweep: SweepConfig{
			NotifyWindowHours: getEnvAsInt("SWEEP_NOTIFY_WINDOW_HOURS", 2),
			CooldownMinutes:   getEnvAsInt("SWEEP_COOLDOWN_MINUTES", 0),
			IntervalMinutes:   getEnvAsInt("SWEEP_INTERVAL_MINUTES", 0),
		},
		Alert: AlertConfig{
			EmailFrom:  getEnv("ALERT_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		},
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

// Windows converts the configured SLA hours to durations.
func (s SLAConfig) Windows() (critical, high, medium, low time.Duration) {
	return time.Duration(s.CriticalHours) * time.Hour,
		time.Duration(s.HighHours) * time.Hour,
		time.Duration(s.MediumHours) * time.Hour,
		time.Duration(s.LowHours) * time.Hour
}

// NotifyWindow returns the reminder look-ahead duration.
func (s SweepConfig) NotifyWindow() time.Duration {
	if s.NotifyWindowHours <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(s.NotifyWindowHours) * time.Hour
}

// Cooldown returns the per-issue sweep suppression window, zero when disabled.
func (s SweepConfig) Cooldown() time.Duration {
	if s.CooldownMinutes <= 0 {
		return 0
	}
	return time.Duration(s.CooldownMinutes) * time.Minute
}

// Interval returns the in-process scheduler period, zero when disabled.
func (s SweepConfig) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
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
