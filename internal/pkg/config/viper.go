package config

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding file values,
// e.g. CREDKEEP_DATABASE_URL overrides database.url.
const EnvPrefix = "CREDKEEP"

// Viper layers CREDKEEP_* environment variables over a config source and the
// package defaults.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the file at pathFile, its format taken from the extension,
// and reloads it whenever it changes on disk.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(pathFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "err", err)
			return
		}
		slog.Info("config reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes reads data in the given viper format ("yaml", "json", ...).
// A nil data yields the defaults alone.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

var defaults = map[string]any{
	"app.name":                                  "credkeep",
	"instrument.enabled":                        false,
	"instrument.service_name":                   "credkeep",
	"instrument.trace_sample_ratio":             1.0,
	"instrument.metric_interval_seconds":        60,
	"instrument.log_mask_fields":                "password,refresh_token,record,token",
	"hash.password.algorithm":                   "pbkdf2",
	"hash.pbkdf2.iterations":                    10000,
	"hash.bcrypt.cost":                          12,
	"database.pool.max_conns":                   4,
	"database.pool.min_conns":                   0,
	"database.pool.max_conn_lifetime_seconds":   3600,
	"database.pool.max_conn_idle_seconds":       300,
	"database.pool.health_check_period_seconds": 60,
	"database.connect_retry_max":                5,
	"messaging.driver":                          "none",
	"modules.account.refresh_token_ttl_days":    7,
	"modules.account.login_max_attempts":        5,
	"modules.account.login_lock_minutes":        15,
	"modules.account.max_goroutine":             16,
}

func (vc *Viper) GetBool(key string) bool       { return vc.v.GetBool(key) }
func (vc *Viper) GetInt(key string) int         { return vc.v.GetInt(key) }
func (vc *Viper) GetInt32(key string) int32     { return vc.v.GetInt32(key) }
func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }
func (vc *Viper) GetString(key string) string   { return vc.v.GetString(key) }

func (vc *Viper) GetSecond(key string) time.Duration { return vc.duration(key, time.Second) }
func (vc *Viper) GetMinute(key string) time.Duration { return vc.duration(key, time.Minute) }
func (vc *Viper) GetDay(key string) time.Duration    { return vc.duration(key, 24*time.Hour) }

func (vc *Viper) duration(key string, unit time.Duration) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * unit
}

// GetArray drops blank elements after trimming.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	if s, ok := vc.v.Get(key).(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = vc.v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Close stops nothing; the file watcher lives as long as the process.
func (vc *Viper) Close() error { return nil }
