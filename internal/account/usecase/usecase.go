package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/pkg/authz"
	"github.com/shandysiswandi/credkeep/internal/pkg/clock"
	"github.com/shandysiswandi/credkeep/internal/pkg/config"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
	"github.com/shandysiswandi/credkeep/internal/pkg/goroutine"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/shandysiswandi/credkeep/internal/pkg/instrument"
	"github.com/shandysiswandi/credkeep/internal/pkg/secret"
	"github.com/shandysiswandi/credkeep/internal/pkg/throttle"
	"github.com/shandysiswandi/credkeep/internal/pkg/uid"
	"github.com/shandysiswandi/credkeep/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	// dummyPassword is hashed once at start-up and verified against when the
	// username is unknown, so both login failures cost one key derivation.
	dummyPassword = "credkeep-dummy-password"
)

type AccountRegisteredEvent struct {
	UserID   int64
	Username string
	Role     entity.Role
}

type AccountDeletedEvent struct {
	UserID    int64
	Username  string
	DeletedBy int64
}

type repoMessaging interface {
	PublishAccountRegistered(ctx context.Context, msg AccountRegisteredEvent) error
	PublishAccountDeleted(ctx context.Context, msg AccountDeletedEvent) error
}

type repoDB interface {
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByRefreshToken(ctx context.Context, tokenHash string) (*entity.User, error)
	ListUsers(ctx context.Context, filter entity.UserListFilter) ([]entity.User, int64, error)

	CreateUser(ctx context.Context, user entity.NewUser) error
	UpdateUser(ctx context.Context, patch entity.PatchUser) error
	UpdateRefreshToken(ctx context.Context, rt entity.RefreshToken) error

	DeleteUser(ctx context.Context, id int64) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	password      hash.Hash
	hmac          hash.Hash
	secret        secret.TokenGenerator
	throttle      throttle.Limiter
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      authz.Enforcer
	goroutine     *goroutine.Manager

	dummyRecord   string
	loginAttempts metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Password      hash.Hash
	HMAC          hash.Hash
	Secret        secret.TokenGenerator
	Throttle      throttle.Limiter
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      authz.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		password:      dep.Password,
		hmac:          dep.HMAC,
		secret:        dep.Secret,
		throttle:      dep.Throttle,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
	if s.throttle == nil {
		s.throttle = throttle.Noop{}
	}

	record, err := s.password.Hash(dummyPassword)
	if err != nil {
		slog.Warn("failed to prepare dummy credential record", "error", err)
	}
	s.dummyRecord = record

	s.loginAttempts, err = s.ins.Meter("account.usecase").Int64Counter(
		"account.login.attempts",
		metric.WithDescription("Login attempts by outcome."),
	)
	if err != nil {
		slog.Warn("failed to create login attempts counter", "error", err)
		s.loginAttempts = metricnoop.Int64Counter{}
	}

	return s
}

func (s *Usecase) countLogin(ctx context.Context, outcome string) {
	s.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

func (s *Usecase) authorize(ctx context.Context, obj, act string) (authz.Actor, error) {
	actor, ok := authz.ActorFrom(ctx)
	if !ok {
		return authz.Actor{}, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	allowed, err := s.enforcer.Enforce(actor.Subject(), obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "actor", actor.String(), "error", err)
		return authz.Actor{}, goerror.NewServer(err)
	}

	if !allowed {
		slog.WarnContext(ctx, "account not allowed", "actor", actor.String(), "obj", obj, "act", act)
		return authz.Actor{}, goerror.NewBusiness("account not allowed", goerror.CodeForbidden)
	}

	return actor, nil
}

func (s *Usecase) refreshTokenTTL() time.Duration {
	if ttl := s.cfg.GetDay("modules.account.refresh_token_ttl_days"); ttl > 0 {
		return ttl
	}
	return defaultRefreshTokenTTL
}

// newRefreshToken returns a fresh token, its digest, and its expiry.
func (s *Usecase) newRefreshToken(ctx context.Context) (token, digest string, expiresAt time.Time, err error) {
	token, err = s.secret.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate refresh token", "error", err)
		return "", "", time.Time{}, goerror.NewServer(err)
	}

	digest, err = s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return "", "", time.Time{}, goerror.NewServer(err)
	}

	return token, digest, s.clock.Now().Add(s.refreshTokenTTL()), nil
}

// publishAsync runs fn in the background, detached from ctx cancellation.
func (s *Usecase) publishAsync(ctx context.Context, name string, fn func(context.Context) error) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to publish event", "event", name, "error", err)
			return err
		}
		return nil
	})
}
