package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "duckdb", cfg.DB.Driver)
	assert.Equal(t, "main", cfg.DB.Schema)
	assert.Equal(t, 100, cfg.Query.DefaultPageSize)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabrest.yaml")
	content := `
server:
  listenAddr: ":3000"
db:
  driver: postgres
  connString: postgres://localhost/app
  schema: public
query:
  defaultPageSize: 25
  blacklist:
    - DROP
    - TRUNCATE
cache:
  enabled: true
  ttl: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.ListenAddr)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/app", cfg.DB.ConnString)
	assert.Equal(t, "public", cfg.DB.Schema)
	assert.Equal(t, 25, cfg.Query.DefaultPageSize)
	assert.Equal(t, []string{"DROP", "TRUNCATE"}, cfg.Query.Blacklist)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TABREST_DB_DRIVER", "clickhouse")
	t.Setenv("TABREST_QUERY_BLACKLIST", "DROP, DELETE ,ALTER")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "clickhouse", cfg.DB.Driver)
	assert.Equal(t, []string{"DROP", "DELETE", "ALTER"}, cfg.Query.Blacklist)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b,"))
	assert.Nil(t, splitList(""))
}
