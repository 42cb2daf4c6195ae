package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "local", cfg.Media.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Redis.UserCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifespan)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
app:
  port: "9000"
db:
  dsn: postgres://file
kafka:
  brokers: ["k1:9092"]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("DB_DSN", "postgres://env")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("TOKEN_LIFESPAN", "90m")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "postgres://env", cfg.DB.DSN)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenLifespan)
}
