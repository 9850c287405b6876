// internal/app/features/groups/groupdelete.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/txn"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeleteGroup deletes a group and everything it owns: votes,
// announcements, memberships, then the group document itself. Allowed
// for group admins and system admins.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	if !h.Policy.CanManageGroup(ctx, groupID, uid) {
		uierrors.RenderForbidden(w, r, "Only group admins can delete the group.", "/groups/"+groupID.Hex())
		return
	}

	// Votes first, then announcements, then memberships, so a failed run
	// never leaves announcements without their group.
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Votes.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := h.Announcements.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := h.Memberships.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		_, err := h.Groups.Delete(ctx, groupID)
		return err
	})
	if err != nil {
		h.Log.Error("delete group", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
