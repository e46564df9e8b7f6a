package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
db:
  host: db.local
  name: arena
  port: 6543
auth:
  jwt_secret: s3cret
judge:
  call_delay: 250ms
  workers: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "db.local", cfg.DB.Host)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.Judge.CallDelay)
	assert.Equal(t, 4, cfg.Judge.Workers)
	// 預設值
	assert.Equal(t, 1, cfg.Judge.MaxManualRetries)
	assert.Equal(t, "debate:room:", cfg.Redis.ChannelPrefix)
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: from-file
`)
	t.Setenv("DEBATE_AUTH_JWT_SECRET", "from-env")
	t.Setenv("DEBATE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":8080"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: x
judge:
  workers: 0
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "judge.workers")
}

func TestDBConfigDSN(t *testing.T) {
	c := DBConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: 5432, SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", c.URL())
}
