// Package app wires configuration, libraries and resources into the credkeep
// command line.
package app

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/credkeep/internal/account/usecase"
	"github.com/shandysiswandi/credkeep/internal/pkg/clock"
	"github.com/shandysiswandi/credkeep/internal/pkg/config"
	"github.com/shandysiswandi/credkeep/internal/pkg/goroutine"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/shandysiswandi/credkeep/internal/pkg/instrument"
	"github.com/shandysiswandi/credkeep/internal/pkg/messaging"
	"github.com/shandysiswandi/credkeep/internal/pkg/secret"
	"github.com/shandysiswandi/credkeep/internal/pkg/uid"
	"github.com/shandysiswandi/credkeep/internal/pkg/validator"
)

// App wires dependencies and manages the command lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	password  hash.Hash
	hmac      hash.Hash
	secret    secret.TokenGenerator
	uid       uid.NumberID
	uuid      uid.StringID
	casbin    *casbin.Enforcer

	// resources, opened on first use by account commands
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	messaging messaging.Client
	account   *usecase.Usecase

	// terminal
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	lines  *bufio.Reader

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initCasbin()

	return app
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, struct {
		name string
		fn   func(context.Context) error
	}{name: name, fn: fn})
}

// Stop waits for background work and closes resources in reverse opening order.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	slog.DebugContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		closer := a.closers[i]
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
