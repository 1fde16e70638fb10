// Package authz decides whether an actor may perform an action on a resource.
//
// Decisions are made by a casbin RBAC enforcer whose policies are defined in
// code. The acting identity travels in the request context.
package authz

import (
	"context"
	"fmt"
	"strconv"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Role names.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Resources and actions.
const (
	ObjUsers = "users"

	ActList   = "list"
	ActDetail = "detail"
	ActUpdate = "update"
	ActDelete = "delete"
)

// Policy grants Act on Obj to Sub. "*" matches any object or action.
type Policy struct {
	Sub string
	Obj string
	Act string
}

// DefaultPolicies grants every users action to admin and listing to user.
var DefaultPolicies = []Policy{
	{Sub: RoleAdmin, Obj: ObjUsers, Act: "*"},
	{Sub: RoleUser, Obj: ObjUsers, Act: ActList},
}

// Enforcer is the subset of *casbin.Enforcer used by callers.
type Enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// NewEnforcer builds an in-memory RBAC enforcer loaded with policies.
// Duplicate policies are ignored.
func NewEnforcer(policies ...Policy) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}

	rules := lo.Map(lo.Uniq(policies), func(p Policy, _ int) []string {
		return []string{p.Sub, p.Obj, p.Act}
	})
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("authz: policies: %w", err)
		}
	}

	return e, nil
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID   int64
	Username string
	Role     string
}

// Subject returns the casbin subject for the actor.
func (a Actor) Subject() string {
	if a.Role == "" {
		return RoleUser
	}
	return a.Role
}

// String identifies the actor in logs.
func (a Actor) String() string {
	return a.Username + "#" + strconv.FormatInt(a.UserID, 10)
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
