// internal/app/features/announcements/pin.go
package announcements

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandlePinToggle flips an announcement's pinned flag. Group admins only;
// authorship does not matter for pinning.
func (h *Handler) HandlePinToggle(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireGroupAdmin(w, r, groupID, "Only group admins can pin announcements.")
	if !gate.OK {
		return
	}

	annID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "annID"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad announcement id.", boardURL(groupID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Announcements.GetByID(ctx, annID)
	if errors.Is(err, announcementstore.ErrNotFound) || (err == nil && a.GroupID != groupID) {
		uierrors.RenderForbidden(w, r, "Announcement not found.", boardURL(groupID))
		return
	}
	if err != nil {
		h.Log.Error("announcement GetByID", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	if err := h.Announcements.SetPinned(ctx, annID, !a.Pinned); err != nil {
		h.Log.Error("announcement SetPinned", zap.Error(err),
			zap.String("announcement_id", annID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	http.Redirect(w, r, boardURL(groupID), http.StatusSeeOther)
}
