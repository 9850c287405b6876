// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type groupRowVM struct {
	ID          string
	Name        string
	Description string
	Role        string
	IsAdmin     bool
}

type groupsListData struct {
	viewdata.BaseVM
	Groups []groupRowVM
}

// ServeGroupsList shows the caller's groups with their role in each.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Memberships.ListByUser(ctx, uid)
	if err != nil {
		h.Log.Error("memberships ListByUser", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	roleByGroup := make(map[primitive.ObjectID]grouppolicy.Role, len(rows))
	for _, m := range rows {
		ids = append(ids, m.GroupID)
		roleByGroup[m.GroupID] = grouppolicy.NormalizeRole(m.Role)
	}

	list, err := h.Groups.ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Error("groups ListByIDs", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	vms := make([]groupRowVM, 0, len(list))
	for _, g := range list {
		role := roleByGroup[g.ID]
		vms = append(vms, groupRowVM{
			ID:          g.ID.Hex(),
			Name:        g.Name,
			Description: g.Description,
			Role:        string(role),
			IsAdmin:     role == grouppolicy.RoleAdmin,
		})
	}

	data := groupsListData{
		BaseVM: viewdata.NewBaseVM(r, "My Groups", "/dashboard"),
		Groups: vms,
	}
	templates.Render(w, r, "groups_list", data)
}
