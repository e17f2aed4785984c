package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_URL", "")
	t.Setenv("MATCH_CACHE_TTL_SECONDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "connection-service", cfg.ServiceName)
	assert.Contains(t, cfg.DBUrl, "connection_db")
	assert.Equal(t, 5*time.Minute, cfg.MatchCacheTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:19006"}, cfg.AllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_URL", " postgres://db/prod ")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("MATCH_CACHE_TTL_SECONDS", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/prod", cfg.DBUrl)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, time.Minute, cfg.MatchCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_ProdRequiresDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))

	t.Setenv("SOME_INT", "-4")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}
