package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
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
	"github.com/shandysiswandi/credkeep/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	errBoom  = errors.New("boom")
	testHMAC = hash.NewHMACSHA256("test-secret")
)

type fakeRepo struct {
	mu      sync.Mutex
	users   map[int64]*entity.User
	getErr  error
	listErr error

	lastFilter entity.UserListFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*entity.User{}}
}

func (r *fakeRepo) put(u entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = &u
}

func (r *fakeRepo) get(id int64) (entity.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return entity.User{}, false
	}
	return *u, true
}

func (r *fakeRepo) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) GetUserByRefreshToken(_ context.Context, tokenHash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.RefreshTokenHash == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) ListUsers(_ context.Context, filter entity.UserListFilter) ([]entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var ids []int64
	for id := range r.users {
		ids = append(ids, id)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	var out []entity.User
	for i := filter.Offset; i < int64(len(ids)) && len(out) < int(filter.Limit); i++ {
		out = append(out, *r.users[ids[i]])
	}
	return out, int64(len(ids)), nil
}

func (r *fakeRepo) CreateUser(_ context.Context, nu entity.NewUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == nu.Username {
			return goerror.ErrConflict
		}
	}
	r.users[nu.ID] = &entity.User{
		ID:                    nu.ID,
		Username:              nu.Username,
		Password:              nu.Password,
		Role:                  nu.Role,
		RefreshTokenHash:      nu.RefreshTokenHash,
		RefreshTokenExpiresAt: nu.RefreshTokenExpiresAt,
	}
	return nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, p entity.PatchUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[p.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Password != "" {
		u.Password = p.Password
	}
	return nil
}

func (r *fakeRepo) UpdateRefreshToken(_ context.Context, rt entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[rt.UserID]
	if !ok || (rt.PreviousHash != "" && u.RefreshTokenHash != rt.PreviousHash) {
		return goerror.ErrNotFound
	}
	u.RefreshTokenHash = rt.Hash
	u.RefreshTokenExpiresAt = rt.ExpiresAt
	return nil
}

func (r *fakeRepo) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return goerror.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeMessaging struct {
	mu         sync.Mutex
	registered []AccountRegisteredEvent
	deleted    []AccountDeletedEvent
}

func (m *fakeMessaging) PublishAccountRegistered(_ context.Context, msg AccountRegisteredEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, msg)
	return nil
}

func (m *fakeMessaging) PublishAccountDeleted(_ context.Context, msg AccountDeletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, msg)
	return nil
}

type fakeThrottle struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
	err      error
}

func newFakeThrottle(limit int) *fakeThrottle {
	return &fakeThrottle{max: limit, failures: map[string]int{}}
}

func (f *fakeThrottle) Allowed(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.failures[key] < f.max, nil
}

func (f *fakeThrottle) Fail(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.failures[key]++
	return nil
}

func (f *fakeThrottle) Reset(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.failures, key)
	return nil
}

func (f *fakeThrottle) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[key]
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBoom }

type fixture struct {
	uc        *Usecase
	repo      *fakeRepo
	messaging *fakeMessaging
	throttle  *fakeThrottle
	goroutine *goroutine.Manager
	password  hash.Hash
}

type fixtureOption func(*Dependency)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", nil)
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer(authz.DefaultPolicies...)
	require.NoError(t, err)

	f := &fixture{
		repo:      newFakeRepo(),
		messaging: &fakeMessaging{},
		throttle:  newFakeThrottle(3),
		goroutine: goroutine.NewManager(4),
		password:  hash.NewPBKDF2(),
	}

	dep := Dependency{
		RepoDB:        f.repo,
		RepoMessaging: f.messaging,
		Validator:     v,
		Config:        cfg,
		Password:      f.password,
		HMAC:          testHMAC,
		Secret:        secret.New(secret.DefaultLength),
		Throttle:      f.throttle,
		UID:           &seqID{next: 100},
		Clock:         clock.Fixed(testNow),
		Instrument:    instrument.NewNoop(),
		Enforcer:      enforcer,
		Goroutine:     f.goroutine,
	}
	for _, opt := range opts {
		opt(&dep)
	}

	f.uc = New(dep)
	return f
}

// seedUser stores an account whose password is plaintext.
func (f *fixture) seedUser(t *testing.T, id int64, username, plaintext string, role entity.Role) entity.User {
	t.Helper()

	record, err := f.password.Hash(plaintext)
	require.NoError(t, err)

	u := entity.User{ID: id, Username: username, Password: record, Role: role}
	f.repo.put(u)
	return u
}

func asActor(u entity.User) context.Context {
	return authz.WithActor(context.Background(), authz.Actor{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role.String(),
	})
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()
	require.Error(t, err)
	require.True(t, goerror.HasCode(err, code), "want code %s, got %v", code, err)
}

func TestUsecase_Authorize(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.authorize(context.Background(), authz.ObjUsers, authz.ActDetail)
	requireCode(t, err, goerror.CodeUnauthorized)

	user := entity.User{ID: 1, Username: "bob", Role: entity.RoleUser}
	_, err = f.uc.authorize(asActor(user), authz.ObjUsers, authz.ActDetail)
	requireCode(t, err, goerror.CodeForbidden)

	admin := entity.User{ID: 2, Username: "root", Role: entity.RoleAdmin}
	actor, err := f.uc.authorize(asActor(admin), authz.ObjUsers, authz.ActDelete)
	require.NoError(t, err)
	require.Equal(t, int64(2), actor.UserID)
}

func TestUsecase_RefreshTokenTTL(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, 7*24*time.Hour, f.uc.refreshTokenTTL())

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  account:\n    refresh_token_ttl_days: 2\n"))
	require.NoError(t, err)
	f = newFixture(t, func(d *Dependency) { d.Config = cfg })
	require.Equal(t, 48*time.Hour, f.uc.refreshTokenTTL())
}
