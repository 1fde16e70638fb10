package app

import (
	"context"

	"github.com/shandysiswandi/credkeep/internal/account"
)

// initAccount opens the account resources on first use.
func (a *App) initAccount(ctx context.Context) error {
	if a.account != nil {
		return nil
	}

	if err := a.initDatabase(ctx); err != nil {
		return err
	}
	if err := a.initCache(ctx); err != nil {
		return err
	}
	if err := a.initMessaging(ctx); err != nil {
		return err
	}

	uc, err := account.New(ctx, account.Dependency{
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Goroutine:  a.goroutine,
		Enforcer:   a.casbin,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Password:   a.password,
		HMAC:       a.hmac,
		Secret:     a.secret,
		Clock:      a.clock,
		Validator:  a.validator,
	})
	if err != nil {
		return err
	}

	a.account = uc
	return nil
}
