// internal/app/features/groups/groupedit.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	"github.com/corkboardhq/corkboard/internal/app/system/formutil"
	"github.com/corkboardhq/corkboard/internal/app/system/inputval"
	"github.com/corkboardhq/corkboard/internal/app/system/normalize"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// editGroupInput defines validation rules for editing a group.
type editGroupInput struct {
	Name        string `validate:"required,max=200" label:"Name"`
	Description string `validate:"max=2000" label:"Description"`
}

type editGroupData struct {
	formutil.Base
	GroupID     string
	Name        string
	Description string
}

// ServeEditGroup renders the Edit Group page. Group admins only.
func (h *Handler) ServeEditGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireGroupAdmin(w, r, groupID, "Only group admins can edit the group.")
	if !gate.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	data := editGroupData{
		GroupID:     group.ID.Hex(),
		Name:        group.Name,
		Description: group.Description,
	}
	formutil.SetBase(&data.Base, r, "Edit Group", "/groups/"+group.ID.Hex())
	templates.Render(w, r, "group_edit", data)
}

// HandleEditGroup processes the Edit Group form. The join code never
// changes; only name and description are editable.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireGroupAdmin(w, r, groupID, "Only group admins can edit the group.")
	if !gate.OK {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderForbidden(w, r, "Bad request.", "/groups/"+groupID.Hex())
		return
	}

	name := normalize.Name(r.FormValue("name"))
	desc := normalize.QueryParam(r.FormValue("description"))

	input := editGroupInput{Name: name, Description: desc}
	if result := inputval.Validate(input); result.HasErrors() {
		h.reRenderEditWithError(w, r, groupID, name, desc, result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Groups.UpdateInfo(ctx, groupID, name, desc); err != nil {
		h.Log.Error("group UpdateInfo", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		h.reRenderEditWithError(w, r, groupID, name, desc, "Database error while updating the group.")
		return
	}

	ret := urlutil.SafeReturn(r.FormValue("return"), "", "/groups/"+groupID.Hex())
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) reRenderEditWithError(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, name, desc, msg string) {
	data := editGroupData{
		GroupID:     groupID.Hex(),
		Name:        name,
		Description: desc,
	}
	formutil.SetBase(&data.Base, r, "Edit Group", "/groups/"+groupID.Hex())
	data.SetError(msg)
	templates.Render(w, r, "group_edit", data)
}
