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
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Telegram  TelegramConfig
	Scheduler SchedulerConfig
	Workday   WorkdayConfig
	Realtime  RealtimeConfig
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

// AuthConfig defines staff authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// TelegramConfig holds the notification transport settings. An empty token
// switches delivery to a log-only transport.
type TelegramConfig struct {
	BotToken   string
	APIBaseURL string
}

// SchedulerConfig tunes the background jobs and the numbering retry loop.
type SchedulerConfig struct {
	AssignIntervalSeconds   int
	NearTurnIntervalSeconds int
	DeliveryIntervalSeconds int
	PreArrivalPosition      int
	DeliveryMaxAttempts     int
	DeliveryBackoffSeconds  int
	DeliveryBatchSize       int
	NumberingMaxRetries     int
}

// WorkdayConfig selects session-open policy.
type WorkdayConfig struct {
	// StrictOpen makes an explicit open fail with a conflict while a workday
	// is already open; otherwise the open one is closed and replaced.
	StrictOpen bool
	// LazyOpen lets the first ticket of the day open a workday implicitly.
	LazyOpen bool
}

// RealtimeConfig configures the public board announcements.
type RealtimeConfig struct {
	NowServingChannel string
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
			Name:                  getEnv("APP_NAME", "branch-queue-service"),
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
		},
		Telegram: TelegramConfig{
			BotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
			APIBaseURL: getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		},
		Scheduler: SchedulerConfig{
			AssignIntervalSeconds:   getEnvAsInt("SCHEDULER_ASSIGN_INTERVAL_SECONDS", 10),
			NearTurnIntervalSeconds: getEnvAsInt("SCHEDULER_NEAR_TURN_INTERVAL_SECONDS", 15),
			DeliveryIntervalSeconds: getEnvAsInt("SCHEDULER_DELIVERY_INTERVAL_SECONDS", 60),
			PreArrivalPosition:      getEnvAsInt("SCHEDULER_PRE_ARRIVAL_POSITION", 3),
			DeliveryMaxAttempts:     getEnvAsInt("DELIVERY_MAX_ATTEMPTS", 4),
			DeliveryBackoffSeconds:  getEnvAsInt("DELIVERY_BACKOFF_SECONDS", 30),
			DeliveryBatchSize:       getEnvAsInt("DELIVERY_BATCH_SIZE", 50),
			NumberingMaxRetries:     getEnvAsInt("NUMBERING_MAX_RETRIES", 5),
		},
		Workday: WorkdayConfig{
			StrictOpen: getEnvAsBool("WORKDAY_STRICT_OPEN", false),
			LazyOpen:   getEnvAsBool("WORKDAY_LAZY_OPEN", true),
		},
		Realtime: RealtimeConfig{
			NowServingChannel: getEnv("REALTIME_NOW_SERVING_CHANNEL", "queue:now-serving"),
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

// AssignInterval returns the assignment tick period.
func (s SchedulerConfig) AssignInterval() time.Duration {
	return time.Duration(s.AssignIntervalSeconds) * time.Second
}

// NearTurnInterval returns the pre-arrival watcher period.
func (s SchedulerConfig) NearTurnInterval() time.Duration {
	return time.Duration(s.NearTurnIntervalSeconds) * time.Second
}

// DeliveryInterval returns the outbox delivery period.
func (s SchedulerConfig) DeliveryInterval() time.Duration {
	return time.Duration(s.DeliveryIntervalSeconds) * time.Second
}

// DeliveryBackoff returns the first retry delay; subsequent delays double.
func (s SchedulerConfig) DeliveryBackoff() time.Duration {
	return time.Duration(s.DeliveryBackoffSeconds) * time.Second
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
