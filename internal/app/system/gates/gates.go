// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering appropriate error
// pages when checks fail.
//
// # Three-Tier Authorization Pattern
//
// Corkboard uses a three-tier authorization approach:
//
//  1. Route-Level Middleware (auth.RequireSignedIn, auth.RequireSystemAdmin)
//     Applied in routes.go files for coarse-grained access control.
//     When middleware handles the check, handlers don't need gates.
//
//  2. Handler-Level Gates (this package)
//     Used in handlers whose requirements depend on a URL parameter,
//     which is almost always the group being viewed. Gates resolve the
//     caller's role in that group through the permission evaluator,
//     render error pages on failure, and return user context.
//
//  3. Policy Layer (internal/app/policy/*)
//     Used directly for decisions that feed the view model rather than
//     block the request, such as whether to show the edit button on an
//     announcement. Policies return values and errors; callers decide
//     how to render.
//
// # Avoiding Redundancy
//
// Don't use gates in handlers that are behind equivalent middleware.
// If routes.go has RequireSystemAdmin, handlers don't need a gate.
// Instead, use authz.UserCtx(r) to get user context without re-checking.
package gates

import (
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// GroupResult is a Result plus the caller's role in the checked group.
type GroupResult struct {
	Result
	Role grouppolicy.Role
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
// The loginURL parameter specifies where to redirect for login.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Name: name, UserID: uid, OK: true}
}

// Gates resolves per-group authorization through the permission evaluator.
type Gates struct {
	policy *grouppolicy.Evaluator
}

// New constructs a Gates backed by the given evaluator.
func New(policy *grouppolicy.Evaluator) *Gates {
	return &Gates{policy: policy}
}

// RequireMember ensures the user is authenticated and belongs to the group.
// Renders unauthorized or forbidden pages on failure.
func (g *Gates) RequireMember(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID) GroupResult {
	return g.requireRole(w, r, groupID,
		[]grouppolicy.Role{grouppolicy.RoleAdmin, grouppolicy.RoleContributor, grouppolicy.RoleMember},
		"You are not a member of this group.")
}

// RequireGroupAdmin ensures the user is authenticated and is an admin of the
// group. forbiddenMsg is shown when the user is a member without the admin
// role.
func (g *Gates) RequireGroupAdmin(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, forbiddenMsg string) GroupResult {
	return g.requireRole(w, r, groupID, []grouppolicy.Role{grouppolicy.RoleAdmin}, forbiddenMsg)
}

// RequireContributor ensures the user is authenticated and may create
// announcements in the group (admin or contributor role).
func (g *Gates) RequireContributor(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, forbiddenMsg string) GroupResult {
	return g.requireRole(w, r, groupID,
		[]grouppolicy.Role{grouppolicy.RoleAdmin, grouppolicy.RoleContributor}, forbiddenMsg)
}

func (g *Gates) requireRole(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, allowed []grouppolicy.Role, forbiddenMsg string) GroupResult {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return GroupResult{}
	}

	role, err := g.policy.RequireGroupRole(r.Context(), groupID, uid, allowed, forbiddenMsg)
	if err != nil {
		var insufficient *grouppolicy.InsufficientRoleError
		switch {
		case errors.Is(err, grouppolicy.ErrNotMember):
			uierrors.RenderForbidden(w, r, "You are not a member of this group.", "/dashboard")
		case errors.As(err, &insufficient):
			uierrors.RenderForbidden(w, r, insufficient.Message, "/dashboard")
		default:
			uierrors.RenderServerError(w, r)
		}
		return GroupResult{}
	}

	return GroupResult{
		Result: Result{Name: name, UserID: uid, OK: true},
		Role:   role,
	}
}
