// internal/app/features/groups/managemembers.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	membershipstore "github.com/corkboardhq/corkboard/internal/app/store/memberships"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type manageMembersData struct {
	viewdata.BaseVM
	GroupID  string
	Name     string
	JoinCode string
	Members  []memberVM
	Error    string
}

// ServeManageMembers renders the member-management page. Group admins only.
func (h *Handler) ServeManageMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireGroupAdmin(w, r, groupID, "Only group admins can manage members.")
	if !gate.OK {
		return
	}

	h.renderManageMembers(w, r, groupID, "")
}

// HandleChangeRole updates a member's role. Demoting the last admin is
// refused so every group keeps at least one admin.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireGroupAdmin(w, r, groupID, "Only group admins can manage members.")
	if !gate.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderForbidden(w, r, "Bad request.", "/groups/"+groupID.Hex()+"/members")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.renderManageMembers(w, r, groupID, "Bad member id.")
		return
	}
	newRole := r.FormValue("role")
	switch newRole {
	case "admin", "contributor", "member":
	default:
		h.renderManageMembers(w, r, groupID, "Unknown role.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, found, err := h.Memberships.Get(ctx, groupID, targetID)
	if err != nil {
		h.Log.Error("membership Get", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}
	if !found {
		h.renderManageMembers(w, r, groupID, "That user is not a member of this group.")
		return
	}

	if grouppolicy.NormalizeRole(current) == grouppolicy.RoleAdmin && newRole != "admin" {
		last, err := h.isLastAdmin(ctx, groupID)
		if err != nil {
			h.Log.Error("admin count", zap.Error(err))
			uierrors.RenderServerError(w, r)
			return
		}
		if last {
			h.renderManageMembers(w, r, groupID, "A group must keep at least one admin.")
			return
		}
	}

	if err := h.Memberships.UpdateRole(ctx, groupID, targetID, newRole); err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			h.renderManageMembers(w, r, groupID, "That user is not a member of this group.")
			return
		}
		h.Log.Error("membership UpdateRole", zap.Error(err),
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	http.Redirect(w, r, "/groups/"+groupID.Hex()+"/members", http.StatusSeeOther)
}

// HandleRemoveMember removes a member from the group. Removing the last
// admin is refused; they must promote someone else or delete the group.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireGroupAdmin(w, r, groupID, "Only group admins can manage members.")
	if !gate.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderForbidden(w, r, "Bad request.", "/groups/"+groupID.Hex()+"/members")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.renderManageMembers(w, r, groupID, "Bad member id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, found, err := h.Memberships.Get(ctx, groupID, targetID)
	if err != nil {
		h.Log.Error("membership Get", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}
	if found && grouppolicy.NormalizeRole(current) == grouppolicy.RoleAdmin {
		last, err := h.isLastAdmin(ctx, groupID)
		if err != nil {
			h.Log.Error("admin count", zap.Error(err))
			uierrors.RenderServerError(w, r)
			return
		}
		if last {
			h.renderManageMembers(w, r, groupID, "A group must keep at least one admin.")
			return
		}
	}

	if err := h.Memberships.Remove(ctx, groupID, targetID); err != nil {
		h.Log.Error("membership Remove", zap.Error(err),
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", targetID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	http.Redirect(w, r, "/groups/"+groupID.Hex()+"/members", http.StatusSeeOther)
}

func (h *Handler) isLastAdmin(ctx context.Context, groupID primitive.ObjectID) (bool, error) {
	n, err := h.Memberships.CountByGroup(ctx, groupID, "admin")
	if err != nil {
		return false, err
	}
	return n <= 1, nil
}

func (h *Handler) renderManageMembers(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, errMsg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.GetByID(ctx, groupID)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.RenderForbidden(w, r, "Group not found.", "/dashboard")
		return
	}
	if err != nil {
		h.Log.Error("group GetByID", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	members, err := h.memberRoster(ctx, groupID)
	if err != nil {
		h.Log.Error("group member roster", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	data := manageMembersData{
		BaseVM:   viewdata.NewBaseVM(r, "Manage Members", "/groups/"+groupID.Hex()),
		GroupID:  group.ID.Hex(),
		Name:     group.Name,
		JoinCode: group.JoinCode,
		Members:  members,
		Error:    errMsg,
	}
	templates.Render(w, r, "group_members", data)
}
