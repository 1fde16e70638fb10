package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: credkeep-test
hash:
  pbkdf2:
    iterations: 25000
database:
  pool:
    max_conn_idle_seconds: 30
modules:
  account:
    refresh_token_ttl_days: 3
    login_lock_minutes: 2
instrument:
  trace_sample_ratio: 0.25
  log_mask_fields:
    - password
    - secret
messaging:
  kafka:
    brokers: "a:9092, b:9092,"
`

func TestNewViperFromBytes(t *testing.T) {
	t.Parallel()

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)
	defer cfg.Close()

	assert.Equal(t, "credkeep-test", cfg.GetString("app.name"))
	assert.Equal(t, 25000, cfg.GetInt("hash.pbkdf2.iterations"))
	assert.Equal(t, 30*time.Second, cfg.GetSecond("database.pool.max_conn_idle_seconds"))
	assert.Equal(t, 72*time.Hour, cfg.GetDay("modules.account.refresh_token_ttl_days"))
	assert.Equal(t, 2*time.Minute, cfg.GetMinute("modules.account.login_lock_minutes"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Equal(t, []string{"password", "secret"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.GetArray("messaging.kafka.brokers"))
}

func TestNewViperFromBytes_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewViperFromBytes("yaml", []byte("app: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "pbkdf2", cfg.GetString("hash.password.algorithm"))
	assert.Equal(t, 10000, cfg.GetInt("hash.pbkdf2.iterations"))
	assert.Equal(t, int32(4), cfg.GetInt32("database.pool.max_conns"))
	assert.Equal(t, "none", cfg.GetString("messaging.driver"))
	assert.False(t, cfg.GetBool("instrument.enabled"))
	assert.Empty(t, cfg.GetArray("messaging.nats.url"))
}

func TestNewViperFromBytes_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewViperFromBytes(" ", []byte("a: 1"))
	assert.Error(t, err)

	_, err = NewViperFromBytes("yaml", []byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestNewViper_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database:\n  url: postgres://file\n"), 0o600))

	cfg, err := NewViper(file)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file", cfg.GetString("database.url"))

	t.Setenv("CREDKEEP_DATABASE_URL", "postgres://env")
	assert.Equal(t, "postgres://env", cfg.GetString("database.url"))

	_, err = NewViper(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
