package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/payments?parseTime=true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Provider.ProviderID != "vodafone-cash" {
		t.Fatalf("unexpected provider id: %s", cfg.Provider.ProviderID)
	}
	if cfg.Provider.PhonePrefix != "0100" || cfg.Provider.PhoneLength != 11 {
		t.Fatalf("unexpected phone rule config: %+v", cfg.Provider)
	}
	if cfg.Provider.Currency != "EGP" {
		t.Fatalf("unexpected currency: %s", cfg.Provider.Currency)
	}
	if cfg.Payments.PendingTimeout != 24*time.Hour {
		t.Fatalf("unexpected pending timeout: %v", cfg.Payments.PendingTimeout)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/payments?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "manual-payments-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "REDIS_ADDR", "redis.internal:6380")
	setEnv(t, "REDIS_IN_PROGRESS_TTL_SECONDS", "30")
	setEnv(t, "PROVIDER_ID", "orange-cash")
	setEnv(t, "PROVIDER_PHONE_PREFIX", "0127")
	setEnv(t, "PAYMENTS_NOTIFY_MAX_ATTEMPTS", "5")
	setEnv(t, "PAYMENTS_NOTIFY_RETRY_INTERVAL_MINUTES", "7")
	setEnv(t, "PAYMENTS_PENDING_TIMEOUT_MINUTES", "11")
	setEnv(t, "PAYMENTS_JOB_BATCH_SIZE", "99")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "manual-payments-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Redis.InProgressTTL != 30*time.Second {
		t.Fatalf("unexpected in-progress ttl: %v", cfg.Redis.InProgressTTL)
	}
	if cfg.Provider.ProviderID != "orange-cash" || cfg.Provider.PhonePrefix != "0127" {
		t.Fatalf("unexpected provider config: %+v", cfg.Provider)
	}
	if cfg.Payments.NotifyMaxAttempts != 5 {
		t.Fatalf("unexpected notify max attempts: %d", cfg.Payments.NotifyMaxAttempts)
	}
	if cfg.Payments.NotifyRetryInterval != 7*time.Minute {
		t.Fatalf("unexpected notify retry interval: %v", cfg.Payments.NotifyRetryInterval)
	}
	if cfg.Payments.PendingTimeout != 11*time.Minute {
		t.Fatalf("unexpected pending timeout: %v", cfg.Payments.PendingTimeout)
	}
	if cfg.Payments.JobBatchSize != 99 {
		t.Fatalf("unexpected job batch size: %d", cfg.Payments.JobBatchSize)
	}
}
