package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "famille", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, ":8087", cfg.HTTP.Addr)
	assert.Equal(t, "", cfg.HTTP.CronToken)

	assert.Equal(t, "https://portal.famille-care.jp", cfg.Compliance.PortalBaseURL)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), cfg.Compliance.ShiftCertFromDate)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), cfg.Compliance.ResignerFloorDate)
	assert.Equal(t, 3, cfg.Compliance.RecordGraceDays)
	assert.Equal(t, "99999999", cfg.Compliance.TestSubjectPrefix)
	assert.Equal(t, "cs_support", cfg.Compliance.RequiredGroupType)
	assert.Equal(t, 10*time.Minute, cfg.Compliance.RunLockTTL)

	assert.Equal(t, "", cfg.Notify.WebhookURL)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("CRON_TOKEN", "secret-token")
	os.Setenv("PORTAL_BASE_URL", "https://staging.example.jp")
	os.Setenv("COMPLIANCE_TEST_SUBJECT_PREFIX", "00000000")
	os.Setenv("COMPLIANCE_RECORD_GRACE_DAYS", "5")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "secret-token", cfg.HTTP.CronToken)
	assert.Equal(t, "https://staging.example.jp", cfg.Compliance.PortalBaseURL)
	assert.Equal(t, "00000000", cfg.Compliance.TestSubjectPrefix)
	assert.Equal(t, 5, cfg.Compliance.RecordGraceDays)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidDate(t *testing.T) {
	os.Clearenv()
	os.Setenv("COMPLIANCE_SHIFT_CERT_FROM", "not-a-date")
	defer os.Clearenv()

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "COMPLIANCE_SHIFT_CERT_FROM")
}
