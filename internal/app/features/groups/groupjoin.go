// internal/app/features/groups/groupjoin.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	membershipstore "github.com/corkboardhq/corkboard/internal/app/store/memberships"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/formutil"
	"github.com/corkboardhq/corkboard/internal/app/system/joincode"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type joinGroupData struct {
	formutil.Base
	Code string
}

// ServeJoinGroup renders the Join Group page.
func (h *Handler) ServeJoinGroup(w http.ResponseWriter, r *http.Request) {
	_, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	data := joinGroupData{}
	formutil.SetBase(&data.Base, r, "Join Group", "/dashboard")
	templates.Render(w, r, "group_join", data)
}

// HandleJoinGroup resolves a join code and adds the caller as a member.
// Joining a group you already belong to is not an error; the user lands
// on the group either way.
func (h *Handler) HandleJoinGroup(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderForbidden(w, r, "Bad request.", "/groups/join")
		return
	}

	code := joincode.Normalize(r.FormValue("code"))
	if code == "" {
		h.reRenderJoinWithError(w, r, "", "A join code is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.GetByJoinCode(ctx, code)
	if errors.Is(err, groupstore.ErrNotFound) {
		h.reRenderJoinWithError(w, r, code, "No group matches that join code.")
		return
	}
	if err != nil {
		h.Log.Error("join code lookup", zap.Error(err))
		h.reRenderJoinWithError(w, r, code, "A database error occurred. Please try again.")
		return
	}

	err = h.Memberships.Add(ctx, group.ID, uid, "member")
	if err != nil && !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		h.Log.Error("join group", zap.Error(err),
			zap.String("group_id", group.ID.Hex()))
		h.reRenderJoinWithError(w, r, code, "A database error occurred. Please try again.")
		return
	}

	http.Redirect(w, r, "/groups/"+group.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) reRenderJoinWithError(w http.ResponseWriter, r *http.Request, code, msg string) {
	data := joinGroupData{Code: code}
	formutil.SetBase(&data.Base, r, "Join Group", "/dashboard")
	data.SetError(msg)
	templates.Render(w, r, "group_join", data)
}
