package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/credkeep/internal/pkg/authz"
	"github.com/shandysiswandi/credkeep/internal/pkg/clock"
	"github.com/shandysiswandi/credkeep/internal/pkg/config"
	"github.com/shandysiswandi/credkeep/internal/pkg/goroutine"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/shandysiswandi/credkeep/internal/pkg/instrument"
	"github.com/shandysiswandi/credkeep/internal/pkg/messaging"
	"github.com/shandysiswandi/credkeep/internal/pkg/secret"
	"github.com/shandysiswandi/credkeep/internal/pkg/uid"
	"github.com/shandysiswandi/credkeep/internal/pkg/validator"
	"google.golang.org/api/option"
)

const defaultConfigPath = "./config/config.yaml"

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	var (
		cfg *config.Viper
		err error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) && !explicit {
		// hash and verify work without a config file; defaults and
		// CREDKEEP_* environment variables still apply.
		cfg, err = config.NewViperFromBytes("yaml", nil)
	} else {
		cfg, err = config.NewViper(path)
	}
	if err != nil {
		slog.Error("failed to init config", "path", path, "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
	a.addCloser("Config", func(context.Context) error {
		return a.config.Close()
	})
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		LogOutput:        a.stderr,
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}

	a.ins = ins
	a.addCloser("Instrument", func(ctx context.Context) error {
		return a.ins.Shutdown(ctx)
	})
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("modules.account.max_goroutine"))
	a.secret = secret.New(secret.DefaultLength)

	hmacSecret := a.config.GetString("hash.hmac.secret")
	if hmacSecret == "" {
		slog.Warn("hash.hmac.secret is empty, refresh token digests are unkeyed")
	}
	a.hmac = hash.NewHMACSHA256(hmacSecret)

	password, err := a.newPasswordHash(a.config.GetString("hash.password.algorithm"))
	if err != nil {
		slog.Error("failed to init password hash", "error", err)
		os.Exit(1)
	}
	a.password = password

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) newPasswordHash(algorithm string) (hash.Hash, error) {
	return hash.NewFromAlgorithm(algorithm, hash.Options{
		PBKDF2Iterations: a.config.GetInt("hash.pbkdf2.iterations"),
		Argon2idPepper:   a.config.GetString("hash.argon2id.pepper"),
		BcryptCost:       a.config.GetInt("hash.bcrypt.cost"),
		BcryptPepper:     a.config.GetString("hash.bcrypt.pepper"),
	})
}

func (a *App) initCasbin() {
	e, err := authz.NewEnforcer(authz.DefaultPolicies...)
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

// connectBackoff bounds how long start-up waits for a dependency.
func (a *App) connectBackoff() retry.Backoff {
	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithCappedDuration(2*time.Second, b)
	return retry.WithMaxRetries(uint64(max(a.config.GetInt("database.connect_retry_max"), 0)), b)
}

func (a *App) initDatabase(ctx context.Context) error {
	url := a.config.GetString("database.url")
	if url == "" {
		return errors.New("database.url is not configured")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = a.config.GetInt32("database.pool.max_conns")
	cfg.MinConns = a.config.GetInt32("database.pool.min_conns")
	cfg.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	cfg.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	cfg.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}

	err = retry.Do(ctx, a.connectBackoff(), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := pool.Ping(pingCtx); err != nil {
			slog.WarnContext(ctx, "failed to ping DB, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	a.dbConn = pool
	a.addCloser("Database", func(context.Context) error {
		pool.Close()
		return nil
	})

	return nil
}

// initCache connects to redis when redis.url is set. Without it login
// throttling is disabled.
func (a *App) initCache(ctx context.Context) error {
	url := a.config.GetString("redis.url")
	if url == "" {
		slog.DebugContext(ctx, "redis.url is empty, login throttling disabled")
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	err = retry.Do(ctx, a.connectBackoff(), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.WarnContext(ctx, "failed to ping redis, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close()
		return fmt.Errorf("ping redis: %w", err)
	}

	a.cacheConn = rdb
	a.addCloser("Redis", func(context.Context) error {
		return rdb.Close()
	})

	return nil
}

func (a *App) initMessaging(ctx context.Context) error {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				if v := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); v > 0 {
					cfg.DialTimeout = v
				}
				if v := a.config.GetSecond("messaging.nsq.write_timeout_seconds"); v > 0 {
					cfg.WriteTimeout = v
				}
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:                a.config.GetArray("messaging.kafka.brokers"),
			BatchTimeout:           a.config.GetSecond("messaging.kafka.batch_timeout_seconds"),
			WriteTimeout:           a.config.GetSecond("messaging.kafka.write_timeout_seconds"),
			RequireAll:             a.config.GetBool("messaging.kafka.require_all"),
			AllowAutoTopicCreation: a.config.GetBool("messaging.kafka.allow_auto_topic_creation"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("app.name") + "-" + a.uuid.Generate()),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(max(a.config.GetSecond("messaging.nats.timeout_seconds"), time.Second)),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID: a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: func() []option.ClientOption {
				var opts []option.ClientOption
				if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
					opts = append(opts, option.WithEndpoint(v))
				}
				if a.config.GetBool("messaging.pubsub.without_auth") {
					opts = append(opts, option.WithoutAuthentication())
				}
				return opts
			}(),
		},
	})
	if err != nil {
		return fmt.Errorf("init messaging driver %q: %w", driver, err)
	}

	a.messaging = client
	a.addCloser("Messaging", func(context.Context) error {
		return client.Close()
	})

	return nil
}
