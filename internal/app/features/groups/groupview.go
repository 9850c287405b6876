// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memberVM struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

type groupViewData struct {
	viewdata.BaseVM
	GroupID     string
	Name        string
	Description string
	JoinCode    string // empty unless the viewer is a group admin
	Role        string
	IsAdmin     bool
	Members     []memberVM
}

// ServeGroupView renders a group's overview page: description, member
// roster, and for admins the join code and management links.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireMember(w, r, groupID)
	if !gate.OK {
		return
	}

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
		h.Log.Error("group member roster", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	isAdmin := gate.Role == grouppolicy.RoleAdmin
	data := groupViewData{
		BaseVM:      viewdata.NewBaseVM(r, group.Name, "/dashboard"),
		GroupID:     group.ID.Hex(),
		Name:        group.Name,
		Description: group.Description,
		Role:        string(gate.Role),
		IsAdmin:     isAdmin,
		Members:     members,
	}
	if isAdmin {
		data.JoinCode = group.JoinCode
	}

	templates.Render(w, r, "group_view", data)
}

// memberRoster joins membership rows with user records, preserving the
// store's name ordering and dropping rows whose user no longer exists.
func (h *Handler) memberRoster(ctx context.Context, groupID primitive.ObjectID) ([]memberVM, error) {
	rows, err := h.Memberships.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	roleByUser := make(map[primitive.ObjectID]string, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
		roleByUser[m.UserID] = string(grouppolicy.NormalizeRole(m.Role))
	}

	users, err := h.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	members := make([]memberVM, 0, len(users))
	for _, u := range users {
		members = append(members, memberVM{
			UserID: u.ID.Hex(),
			Name:   u.FullName,
			Email:  u.Email,
			Role:   roleByUser[u.ID],
		})
	}
	return members, nil
}
