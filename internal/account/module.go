// Package account wires the account use cases to their Postgres, Redis and
// broker adapters.
package account

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/credkeep/internal/account/outbound/db"
	"github.com/shandysiswandi/credkeep/internal/account/outbound/mq"
	"github.com/shandysiswandi/credkeep/internal/account/usecase"
	"github.com/shandysiswandi/credkeep/internal/pkg/clock"
	"github.com/shandysiswandi/credkeep/internal/pkg/config"
	"github.com/shandysiswandi/credkeep/internal/pkg/goroutine"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/shandysiswandi/credkeep/internal/pkg/instrument"
	"github.com/shandysiswandi/credkeep/internal/pkg/messaging"
	"github.com/shandysiswandi/credkeep/internal/pkg/secret"
	"github.com/shandysiswandi/credkeep/internal/pkg/throttle"
	"github.com/shandysiswandi/credkeep/internal/pkg/uid"
	"github.com/shandysiswandi/credkeep/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              // optional; nil disables login throttling
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Secret     secret.TokenGenerator      `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New prepares the schema and returns the account use cases.
func New(ctx context.Context, dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbAccount := db.NewDB(dep.DBConn, dep.Instrument)
	if err := dbAccount.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("account: ensure schema: %w", err)
	}

	var limiter throttle.Limiter = throttle.Noop{}
	if dep.CacheConn != nil {
		limiter = throttle.NewRedis(dep.CacheConn,
			throttle.WithPrefix("credkeep:throttle:"),
			throttle.WithMaxAttempts(dep.Config.GetInt("modules.account.login_max_attempts")),
			throttle.WithWindow(dep.Config.GetMinute("modules.account.login_lock_minutes")),
		)
	}

	return usecase.New(usecase.Dependency{
		RepoDB:        dbAccount,
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Validator:     dep.Validator,
		Config:        dep.Config,
		Password:      dep.Password,
		HMAC:          dep.HMAC,
		Secret:        dep.Secret,
		Throttle:      limiter,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	}), nil
}
