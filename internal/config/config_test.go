package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("BASE_URL", "https://petkimlik.example/")
	t.Setenv("STOCK_WARNING_THRESHOLD", "7")
	t.Setenv("DB_SLOW_QUERY", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://petkimlik.example", cfg.App.BaseURL)
	assert.Equal(t, 7, cfg.Shop.StockWarningThreshold)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQuery)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ProductionRejectsDevAuth(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DEV_AUTH", "true")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.GetDSN())

	c.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", c.GetDSN())
	assert.True(t, c.HasDatabase())
}
