// internal/app/features/announcements/delete.go
package announcements

import (
	"context"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/txn"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeleteAnnouncement deletes a post and its votes. Author or group
// admin only. Attachment files are left in the store; keys are unique so
// they can never be served again, and a reaper can collect them offline.
func (h *Handler) HandleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireMember(w, r, groupID)
	if !gate.OK {
		return
	}

	annID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "annID"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad announcement id.", boardURL(groupID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, ok := h.loadForModify(ctx, w, r, groupID, annID, gate.UserID); !ok {
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Votes.DeleteByAnnouncement(ctx, annID); err != nil {
			return err
		}
		_, err := h.Announcements.Delete(ctx, annID)
		return err
	})
	if err != nil {
		h.Log.Error("delete announcement", zap.Error(err),
			zap.String("announcement_id", annID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	h.refreshTotalsAsync(groupID)
	http.Redirect(w, r, boardURL(groupID), http.StatusSeeOther)
}
