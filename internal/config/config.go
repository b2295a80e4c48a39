package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 接続先は本体ポータルと同じ Postgres
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis 設定（バッチ実行ロック・直近実行サマリのキャッシュ）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// HTTPConfig HTTP surface of the batch service.
type HTTPConfig struct {
	Addr      string
	CronToken string // shared secret for scheduled invocation
}

// ComplianceConfig parameters of the rule checks.
type ComplianceConfig struct {
	PortalBaseURL string // deep links in alert messages resolve against this

	// Scan windows. Dates are inclusive floors; checks never look further back.
	ShiftCertFromDate time.Time // shift_cert_check default window start
	ResignerFloorDate time.Time // resigner/record checks never scan before this

	RecordGraceDays     int    // record must be submitted within N days of the shift start
	TestSubjectPrefix   string // subjects with this id prefix are placeholder data
	RequiredGroupType   string // lw_groups.group_type expected per subject
	RunLockTTL          time.Duration
}

// NotifyConfig batch summary webhook (messaging channel).
type NotifyConfig struct {
	WebhookURL string // empty disables the notifier
}

// Config service configuration, loaded from the environment.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	HTTP       HTTPConfig
	Compliance ComplianceConfig
	Notify     NotifyConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "famille")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8087")
	cfg.HTTP.CronToken = getEnv("CRON_TOKEN", "")

	cfg.Compliance.PortalBaseURL = getEnv("PORTAL_BASE_URL", "https://portal.famille-care.jp")

	fromDate, err := getEnvDate("COMPLIANCE_SHIFT_CERT_FROM", "2025-07-01")
	if err != nil {
		return nil, err
	}
	cfg.Compliance.ShiftCertFromDate = fromDate

	floorDate, err := getEnvDate("COMPLIANCE_RESIGNER_FLOOR", "2025-10-01")
	if err != nil {
		return nil, err
	}
	cfg.Compliance.ResignerFloorDate = floorDate

	cfg.Compliance.RecordGraceDays = getEnvInt("COMPLIANCE_RECORD_GRACE_DAYS", 3)
	cfg.Compliance.TestSubjectPrefix = getEnv("COMPLIANCE_TEST_SUBJECT_PREFIX", "99999999")
	cfg.Compliance.RequiredGroupType = getEnv("COMPLIANCE_REQUIRED_GROUP_TYPE", "cs_support")
	cfg.Compliance.RunLockTTL = time.Duration(getEnvInt("COMPLIANCE_RUN_LOCK_TTL_SEC", 600)) * time.Second

	cfg.Notify.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDate(key, defaultValue string) (time.Time, error) {
	raw := getEnv(key, defaultValue)
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date in %s: %q: %w", key, raw, err)
	}
	return t, nil
}
