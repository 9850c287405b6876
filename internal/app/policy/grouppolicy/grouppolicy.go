// internal/app/policy/grouppolicy/grouppolicy.go

// Package grouppolicy answers "can this user do X" for group and
// announcement operations without performing the action itself.
//
// Two kinds of checks live here:
//
//   - Boolean gating checks (IsGroupAdmin, CanCreateAnnouncements, ...)
//     drive UI visibility. They never propagate failures: a lookup error
//     degrades to false so gating fails safe instead of crashing.
//   - The enforcing check (RequireGroupRole) gates actual mutations and
//     fails loudly with a display-ready message. Handlers call it
//     immediately before the protected write, never trusting an earlier
//     UI-side check, because role state can change between the two.
//
// Roles are evaluated per call from current membership state and never
// cached, so promotions, demotions, and removals take effect on the next
// action.
package grouppolicy

import (
	"context"
	"errors"
	"strings"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Role is a capability level within a group.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
	RoleMember      Role = "member"

	// RoleNone means no membership exists. It is a valid, expected
	// answer, not an error.
	RoleNone Role = ""
)

// SystemAdmin is the only system-wide role.
const SystemAdmin = "system_admin"

// NormalizeRole maps a stored role value onto the evaluator's enum.
// Legacy "moderator" rows and any other unrecognized non-empty value read
// as member: the row proves membership, but grants no elevated capability.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleContributor:
		return RoleContributor
	case RoleNone:
		return RoleNone
	default:
		return RoleMember
	}
}

// ErrNotMember is returned by RequireGroupRole when the caller has no
// membership row for the group.
var ErrNotMember = errors.New("you are not a member of this group")

// InsufficientRoleError is returned by RequireGroupRole when the caller is
// a member but their role is not in the allowed set. Message is intended
// for direct display.
type InsufficientRoleError struct {
	Message string
}

func (e *InsufficientRoleError) Error() string { return e.Message }

// Lookup is the data collaborator: fallible single-row point lookups
// against current stored state. Absence of a row is a normal "no" answer
// (found=false, err=nil), not an exceptional condition.
type Lookup interface {
	// GroupRole fetches the membership row for (groupID, userID) and
	// returns its raw role value.
	GroupRole(ctx context.Context, groupID, userID primitive.ObjectID) (role string, found bool, err error)

	// AnnouncementOwner fetches the (author_id, group_id) pair for an
	// announcement.
	AnnouncementOwner(ctx context.Context, announcementID primitive.ObjectID) (owner models.AnnouncementOwner, found bool, err error)

	// HasSystemRole reports whether userID holds the given system role.
	HasSystemRole(ctx context.Context, userID primitive.ObjectID, role string) (bool, error)
}

// Evaluator evaluates permissions against a Lookup. Construct one per
// application (or per test) rather than sharing ambient state.
type Evaluator struct {
	lookup Lookup
	log    *zap.Logger
}

// New constructs an Evaluator.
func New(lookup Lookup, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{lookup: lookup, log: logger}
}

// RoleOf returns the caller's effective role in the group, or RoleNone if
// no membership exists. "Not a member" is not an error.
func (e *Evaluator) RoleOf(ctx context.Context, groupID, userID primitive.ObjectID) (Role, error) {
	raw, found, err := e.lookup.GroupRole(ctx, groupID, userID)
	if err != nil {
		return RoleNone, err
	}
	if !found {
		return RoleNone, nil
	}
	return NormalizeRole(raw), nil
}

// HasGroupPermission reports whether the caller holds one of the allowed
// roles in the group. Lookup failures degrade to false.
func (e *Evaluator) HasGroupPermission(ctx context.Context, groupID, userID primitive.ObjectID, allowed ...Role) bool {
	role, err := e.RoleOf(ctx, groupID, userID)
	if err != nil {
		e.log.Warn("group role lookup failed; denying",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
		return false
	}
	if role == RoleNone {
		return false
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// IsGroupAdmin reports whether the caller is an admin of the group.
func (e *Evaluator) IsGroupAdmin(ctx context.Context, groupID, userID primitive.ObjectID) bool {
	return e.HasGroupPermission(ctx, groupID, userID, RoleAdmin)
}

// CanCreateAnnouncements reports whether the caller may post to the group's
// board: admins and contributors can, members cannot.
func (e *Evaluator) CanCreateAnnouncements(ctx context.Context, groupID, userID primitive.ObjectID) bool {
	return e.HasGroupPermission(ctx, groupID, userID, RoleAdmin, RoleContributor)
}

// IsSystemAdmin reports whether the user holds the system_admin role.
// Lookup failures degrade to false.
func (e *Evaluator) IsSystemAdmin(ctx context.Context, userID primitive.ObjectID) bool {
	ok, err := e.lookup.HasSystemRole(ctx, userID, SystemAdmin)
	if err != nil {
		e.log.Warn("system role lookup failed; denying",
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
		return false
	}
	return ok
}

// CanAccessGroup reports whether the user may view the group: system
// admins always can, otherwise any membership role suffices.
func (e *Evaluator) CanAccessGroup(ctx context.Context, groupID, userID primitive.ObjectID) bool {
	if e.IsSystemAdmin(ctx, userID) {
		return true
	}
	return e.HasGroupPermission(ctx, groupID, userID, RoleAdmin, RoleContributor, RoleMember)
}

// CanManageGroup reports whether the user may administer the group:
// system admins always can, otherwise group admin is required.
func (e *Evaluator) CanManageGroup(ctx context.Context, groupID, userID primitive.ObjectID) bool {
	if e.IsSystemAdmin(ctx, userID) {
		return true
	}
	return e.IsGroupAdmin(ctx, groupID, userID)
}

// ModifyDecision is the outcome of CanModifyAnnouncement.
type ModifyDecision struct {
	CanModify bool
	IsAuthor  bool
	IsAdmin   bool
}

// CanModifyAnnouncement decides whether the user may edit or delete the
// announcement: the author may, and so may an admin of the owning group.
// A missing announcement (or a failed lookup) is modeled as "no
// permission", not as an error; the caller only needs a gate.
func (e *Evaluator) CanModifyAnnouncement(ctx context.Context, announcementID, userID primitive.ObjectID) ModifyDecision {
	owner, found, err := e.lookup.AnnouncementOwner(ctx, announcementID)
	if err != nil {
		e.log.Warn("announcement owner lookup failed; denying",
			zap.String("announcement_id", announcementID.Hex()),
			zap.Error(err))
		return ModifyDecision{}
	}
	if !found {
		return ModifyDecision{}
	}

	d := ModifyDecision{
		IsAuthor: owner.AuthorID == userID,
		IsAdmin:  e.IsGroupAdmin(ctx, owner.GroupID, userID),
	}
	d.CanModify = d.IsAuthor || d.IsAdmin
	return d
}

// RequireGroupRole is the enforcing variant used immediately before a
// mutation. It fails with ErrNotMember when no membership exists, or with
// an InsufficientRoleError carrying failureMsg when the caller's role is
// not in the allowed set. On success it returns the caller's role.
func (e *Evaluator) RequireGroupRole(ctx context.Context, groupID, userID primitive.ObjectID, allowed []Role, failureMsg string) (Role, error) {
	raw, found, err := e.lookup.GroupRole(ctx, groupID, userID)
	if err != nil {
		return RoleNone, err
	}
	if !found {
		return RoleNone, ErrNotMember
	}
	role := NormalizeRole(raw)
	for _, a := range allowed {
		if role == a {
			return role, nil
		}
	}
	return RoleNone, &InsufficientRoleError{Message: failureMsg}
}
