package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shandysiswandi/credkeep/internal/account/entity"
	"github.com/shandysiswandi/credkeep/internal/account/usecase"
	"github.com/shandysiswandi/credkeep/internal/pkg/authz"
	"github.com/shandysiswandi/credkeep/internal/pkg/goerror"
	"github.com/shandysiswandi/credkeep/internal/pkg/hash"
	"github.com/shandysiswandi/credkeep/internal/pkg/instrument"
)

const usage = `usage: credkeep <command> [flags]

commands:
  hash [-algorithm A]                       read a secret, print its credential record
  verify -record R [-algorithm A]           read a secret, print Success or Failed
  register -username U [-role R]            create an account
  login -username U                         verify credentials, print a refresh token
  refresh -token T                          rotate a refresh token
  users list [-page N] [-size N]            list accounts
  users get -id N -admin U                  show an account
  users update -id N [-username U] [-password] -admin U
                                            update an account
  users delete -id N -admin U               delete an account

Secrets are prompted without echo on a terminal, or read one per line from stdin.
`

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

var errVerifyFailed = errors.New("verification failed")

type usageError string

func (e usageError) Error() string { return string(e) }

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	ctx = instrument.EnsureCorrelationID(ctx)

	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return exitUsage
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "hash":
		err = a.cmdHash(rest)
	case "verify":
		err = a.cmdVerify(rest)
	case "register":
		err = a.cmdRegister(ctx, rest)
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "refresh":
		err = a.cmdRefresh(ctx, rest)
	case "users":
		err = a.cmdUsers(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return exitOK
	default:
		err = usageError(fmt.Sprintf("unknown command %q", cmd))
	}

	return a.exitCode(ctx, err)
}

func (a *App) exitCode(ctx context.Context, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	if errors.Is(err, errVerifyFailed) {
		return exitFail
	}

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(a.stderr, "%s\n\n%s", ue, usage)
		return exitUsage
	}

	ge, ok := goerror.As(err)
	if !ok {
		slog.ErrorContext(ctx, "command failed", "error", err)
		fmt.Fprintln(a.stderr, "error:", err)
		return exitFail
	}

	if ge.Type() == goerror.TypeServer {
		slog.ErrorContext(ctx, "command failed", "error", ge.Unwrap())
		fmt.Fprintln(a.stderr, "error:", ge.Msg())
		return exitFail
	}

	fmt.Fprintln(a.stderr, "error:", ge.Msg())
	fields := ge.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.stderr, "  %s: %s\n", k, fields[k])
	}

	return exitFail
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError(err.Error())
	}
	if fs.NArg() > 0 {
		return usageError(fmt.Sprintf("%s: unexpected argument %q", fs.Name(), fs.Arg(0)))
	}
	return nil
}

func (a *App) hasherFor(algorithm string) (hash.Hash, error) {
	if algorithm == "" {
		return a.password, nil
	}

	h, err := a.newPasswordHash(algorithm)
	if errors.Is(err, hash.ErrUnknownAlgorithm) {
		return nil, usageError(err.Error())
	}
	return h, err
}

func (a *App) cmdHash(args []string) error {
	fs := a.flagSet("hash")
	algorithm := fs.String("algorithm", "", "pbkdf2, argon2id or bcrypt (default from hash.password.algorithm)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	h, err := a.hasherFor(*algorithm)
	if err != nil {
		return err
	}

	plaintext, err := a.readSecret("Secret: ")
	if err != nil {
		return err
	}

	record, err := h.Hash(plaintext)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, record)
	return nil
}

func (a *App) cmdVerify(args []string) error {
	fs := a.flagSet("verify")
	record := fs.String("record", "", "credential record produced by hash")
	algorithm := fs.String("algorithm", "", "pbkdf2, argon2id or bcrypt (default from hash.password.algorithm)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *record == "" {
		return usageError("verify: -record is required")
	}

	h, err := a.hasherFor(*algorithm)
	if err != nil {
		return err
	}

	plaintext, err := a.readSecret("Secret: ")
	if err != nil {
		return err
	}

	result := h.Verify(*record, plaintext)
	fmt.Fprintln(a.stdout, result)
	if result != hash.Success {
		return errVerifyFailed
	}
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	username := fs.String("username", "", "account name")
	role := fs.String("role", "user", "user or admin")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *username == "" {
		return usageError("register: -username is required")
	}

	if err := a.initAccount(ctx); err != nil {
		return err
	}

	password, err := a.readSecret("Password: ")
	if err != nil {
		return err
	}

	out, err := a.account.Register(ctx, usecase.RegisterInput{
		Username: *username,
		Password: password,
		Role:     entity.Role(*role),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "id=%d username=%s role=%s\n", out.User.ID, out.User.Username, out.User.Role)
	fmt.Fprintf(a.stdout, "refresh_token=%s\n", out.RefreshToken)
	return nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	username := fs.String("username", "", "account name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *username == "" {
		return usageError("login: -username is required")
	}

	if err := a.initAccount(ctx); err != nil {
		return err
	}

	password, err := a.readSecret("Password: ")
	if err != nil {
		return err
	}

	out, err := a.account.Login(ctx, usecase.LoginInput{Username: *username, Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "id=%d username=%s role=%s\n", out.UserID, out.Username, out.Role)
	fmt.Fprintf(a.stdout, "refresh_token=%s\n", out.RefreshToken)
	return nil
}

func (a *App) cmdRefresh(ctx context.Context, args []string) error {
	fs := a.flagSet("refresh")
	token := fs.String("token", "", "current refresh token")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *token == "" {
		return usageError("refresh: -token is required")
	}

	if err := a.initAccount(ctx); err != nil {
		return err
	}

	out, err := a.account.RefreshToken(ctx, usecase.RefreshTokenInput{RefreshToken: *token})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "refresh_token=%s\n", out.RefreshToken)
	fmt.Fprintf(a.stdout, "expires_at=%s\n", out.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) cmdUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("users: missing subcommand (list, get, update, delete)")
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "list":
		return a.cmdUsersList(ctx, rest)
	case "get":
		return a.cmdUsersGet(ctx, rest)
	case "update":
		return a.cmdUsersUpdate(ctx, rest)
	case "delete":
		return a.cmdUsersDelete(ctx, rest)
	default:
		return usageError(fmt.Sprintf("users: unknown subcommand %q", sub))
	}
}

// clampInt32 saturates v instead of letting the conversion wrap.
func clampInt32(v int) int32 {
	return int32(min(max(v, math.MinInt32), math.MaxInt32))
}

func (a *App) cmdUsersList(ctx context.Context, args []string) error {
	fs := a.flagSet("users list")
	page := fs.Int("page", 1, "page number starting at 1")
	size := fs.Int("size", 10, "page size, at most 100")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.initAccount(ctx); err != nil {
		return err
	}

	out, err := a.account.UserList(ctx, usecase.UserListInput{Page: clampInt32(*page), Size: clampInt32(*size)})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE")
	for _, u := range out.Users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "page %d, size %d, total %d\n", out.Page, out.Size, out.Total)
	return nil
}

// adminFlags registers the flags shared by the admin-only subcommands.
func adminFlags(fs *flag.FlagSet) (id *int64, admin *string) {
	return fs.Int64("id", 0, "account id"), fs.String("admin", "", "admin account performing the operation")
}

// asAdmin logs the admin account in and returns ctx carrying it as actor.
func (a *App) asAdmin(ctx context.Context, admin string) (context.Context, error) {
	if err := a.initAccount(ctx); err != nil {
		return nil, err
	}

	password, err := a.readSecret("Password for " + admin + ": ")
	if err != nil {
		return nil, err
	}

	out, err := a.account.Login(ctx, usecase.LoginInput{Username: admin, Password: password})
	if err != nil {
		return nil, err
	}

	return authz.WithActor(ctx, authz.Actor{
		UserID:   out.UserID,
		Username: out.Username,
		Role:     out.Role.String(),
	}), nil
}

func requireAdminFlags(name string, id int64, admin string) error {
	var missing []string
	if id == 0 {
		missing = append(missing, "-id")
	}
	if admin == "" {
		missing = append(missing, "-admin")
	}
	if len(missing) > 0 {
		return usageError(fmt.Sprintf("%s: %s required", name, strings.Join(missing, " and ")))
	}
	return nil
}

func (a *App) cmdUsersGet(ctx context.Context, args []string) error {
	fs := a.flagSet("users get")
	id, admin := adminFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireAdminFlags("users get", *id, *admin); err != nil {
		return err
	}

	ctx, err := a.asAdmin(ctx, *admin)
	if err != nil {
		return err
	}

	u, err := a.account.UserDetail(ctx, usecase.UserDetailInput{ID: *id})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "id=%d username=%s role=%s\n", u.ID, u.Username, u.Role)
	return nil
}

func (a *App) cmdUsersUpdate(ctx context.Context, args []string) error {
	fs := a.flagSet("users update")
	id, admin := adminFlags(fs)
	username := fs.String("username", "", "new account name")
	newPassword := fs.Bool("password", false, "prompt for a new password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireAdminFlags("users update", *id, *admin); err != nil {
		return err
	}
	if *username == "" && !*newPassword {
		return usageError("users update: nothing to update, pass -username or -password")
	}

	ctx, err := a.asAdmin(ctx, *admin)
	if err != nil {
		return err
	}

	in := usecase.UserUpdateInput{ID: *id, Username: *username}
	if *newPassword {
		if in.Password, err = a.readSecret("New password: "); err != nil {
			return err
		}
	}

	if err := a.account.UserUpdate(ctx, in); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "updated id=%d\n", *id)
	return nil
}

func (a *App) cmdUsersDelete(ctx context.Context, args []string) error {
	fs := a.flagSet("users delete")
	id, admin := adminFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireAdminFlags("users delete", *id, *admin); err != nil {
		return err
	}

	ctx, err := a.asAdmin(ctx, *admin)
	if err != nil {
		return err
	}

	if err := a.account.UserDelete(ctx, usecase.UserDeleteInput{ID: *id}); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "deleted id=%d\n", *id)
	return nil
}
