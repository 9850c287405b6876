// internal/app/features/groups/groupleave.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleLeaveGroup removes the caller's own membership. The last admin
// cannot leave; they must promote a replacement or delete the group.
func (h *Handler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	role, found, err := h.Memberships.Get(ctx, groupID, uid)
	if err != nil {
		h.Log.Error("membership Get", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}
	if !found {
		// Already gone; leaving twice is harmless.
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	if grouppolicy.NormalizeRole(role) == grouppolicy.RoleAdmin {
		last, err := h.isLastAdmin(ctx, groupID)
		if err != nil {
			h.Log.Error("admin count", zap.Error(err))
			uierrors.RenderServerError(w, r)
			return
		}
		if last {
			uierrors.RenderForbidden(w, r,
				"You are the only admin. Promote another member or delete the group instead.",
				"/groups/"+groupID.Hex())
			return
		}
	}

	if err := h.Memberships.Remove(ctx, groupID, uid); err != nil {
		h.Log.Error("leave group", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
