package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "DB_TYPE", "DB_PATH", "DB_PORT", "PLAN_HORIZON_YEARS", "LOG_FORMAT", "DB_MAX_CONNS", "ENABLE_LIFF"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "limeplan.db", cfg.DBPath)
	assert.Equal(t, 6, cfg.HorizonYears)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.False(t, cfg.EnableLIFF)
}

func TestLoadPostgres(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "limeplan")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ENABLE_LIFF", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.True(t, cfg.EnableLIFF)
	assert.Equal(t, "***", cfg.Redacted().DBPassword)
	assert.Equal(t, "secret", cfg.DBPassword)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	cases := map[string]map[string]string{
		"unknown db":      {"DB_TYPE": "oracle"},
		"missing host":    {"DB_TYPE": "mysql", "DB_HOST": "", "DB_NAME": "x"},
		"horizon":         {"DB_TYPE": "sqlite", "PLAN_HORIZON_YEARS": "0"},
		"horizon not int": {"DB_TYPE": "sqlite", "PLAN_HORIZON_YEARS": "six"},
		"log format":      {"DB_TYPE": "sqlite", "LOG_FORMAT": "xml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
