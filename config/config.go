package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	MySQL    MySQLConfig
	Redis    RedisConfig
	Log      LogConfig
	Provider ProviderConfig
	Payments PaymentsConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	InProgressTTL time.Duration
	CompletedTTL  time.Duration
}

type LogConfig struct {
	Level string
}

// ProviderConfig parameterizes the manual payment channel. The phone prefix
// and length are region-specific and must stay configurable.
type ProviderConfig struct {
	ProviderID  string
	DisplayName string
	Currency    string
	PhonePrefix string
	PhoneLength int
	DialCode    string
}

type PaymentsConfig struct {
	NotifyMaxAttempts   int32
	NotifyRetryInterval time.Duration
	NotifyHTTPTimeout   time.Duration
	PendingTimeout      time.Duration
	JobBatchSize        int32
}

type JobsConfig struct {
	NotifyDispatchInterval time.Duration
	ExpirePendingInterval  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "manual-payments-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getIntEnv("REDIS_DB", 0),
			InProgressTTL: getSecondsEnv("REDIS_IN_PROGRESS_TTL_SECONDS", 10*time.Second),
			CompletedTTL:  getMinutesEnv("REDIS_COMPLETED_TTL_MINUTES", 24*60*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Provider: ProviderConfig{
			ProviderID:  getEnv("PROVIDER_ID", "vodafone-cash"),
			DisplayName: getEnv("PROVIDER_DISPLAY_NAME", "Vodafone Cash"),
			Currency:    getEnv("PROVIDER_CURRENCY", "EGP"),
			PhonePrefix: getEnv("PROVIDER_PHONE_PREFIX", "0100"),
			PhoneLength: getIntEnv("PROVIDER_PHONE_LENGTH", 11),
			DialCode:    getEnv("PROVIDER_DIAL_CODE", "*9#"),
		},
		Payments: PaymentsConfig{
			NotifyMaxAttempts:   int32(getIntEnv("PAYMENTS_NOTIFY_MAX_ATTEMPTS", 10)),
			NotifyRetryInterval: getMinutesEnv("PAYMENTS_NOTIFY_RETRY_INTERVAL_MINUTES", 5*time.Minute),
			NotifyHTTPTimeout:   getSecondsEnv("PAYMENTS_NOTIFY_HTTP_TIMEOUT_SECONDS", 10*time.Second),
			PendingTimeout:      getMinutesEnv("PAYMENTS_PENDING_TIMEOUT_MINUTES", 24*60*time.Minute),
			JobBatchSize:        int32(getIntEnv("PAYMENTS_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			NotifyDispatchInterval: getMinutesEnv("PAYMENTS_NOTIFY_DISPATCH_INTERVAL_MINUTES", time.Minute),
			ExpirePendingInterval:  getMinutesEnv("PAYMENTS_EXPIRE_PENDING_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
