// internal/app/features/groups/groupnew.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/formutil"
	"github.com/corkboardhq/corkboard/internal/app/system/inputval"
	"github.com/corkboardhq/corkboard/internal/app/system/normalize"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/txn"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// createGroupInput defines validation rules for creating a group.
type createGroupInput struct {
	Name        string `validate:"required,max=200" label:"Name"`
	Description string `validate:"max=2000" label:"Description"`
}

type newGroupData struct {
	formutil.Base
	Name        string
	Description string
}

// ServeNewGroup renders the New Group page.
func (h *Handler) ServeNewGroup(w http.ResponseWriter, r *http.Request) {
	_, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	data := newGroupData{}
	formutil.SetBase(&data.Base, r, "New Group", "/dashboard")
	templates.Render(w, r, "group_new", data)
}

// HandleCreateGroup processes the New Group form. The creator becomes the
// group's first admin; group and membership are written in one transaction.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderForbidden(w, r, "Bad request.", "/groups/new")
		return
	}

	name := normalize.Name(r.FormValue("name"))
	desc := normalize.QueryParam(r.FormValue("description"))

	input := createGroupInput{Name: name, Description: desc}
	if result := inputval.Validate(input); result.HasErrors() {
		h.reRenderNewWithError(w, r, name, desc, result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var created models.Group
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		g, err := h.Groups.Create(ctx, models.Group{
			Name:        name,
			Description: desc,
			CreatedBy:   uid,
		})
		if err != nil {
			return err
		}
		if err := h.Memberships.Add(ctx, g.ID, uid, "admin"); err != nil {
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		h.Log.Error("create group", zap.Error(err), zap.String("name", name))
		h.reRenderNewWithError(w, r, name, desc, "Database error while creating the group.")
		return
	}

	http.Redirect(w, r, "/groups/"+created.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) reRenderNewWithError(w http.ResponseWriter, r *http.Request, name, desc, msg string) {
	data := newGroupData{Name: name, Description: desc}
	formutil.SetBase(&data.Base, r, "New Group", "/dashboard")
	data.SetError(msg)
	templates.Render(w, r, "group_new", data)
}
