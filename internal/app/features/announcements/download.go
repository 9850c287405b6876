// internal/app/features/announcements/download.go
package announcements

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// presignTTL is how long a generated attachment URL stays valid.
const presignTTL = 15 * time.Minute

// ServeAttachment streams one attachment to a group member. Local storage
// serves the file directly; other backends get a short-lived signed URL.
func (h *Handler) ServeAttachment(w http.ResponseWriter, r *http.Request) {
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

	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 0 || idx >= len(a.Attachments) {
		uierrors.RenderForbidden(w, r, "No such attachment.", announcementURL(groupID, annID))
		return
	}
	att := a.Attachments[idx]

	contentDisposition := "attachment; filename=\"" + att.Name + "\""

	// Prevent browser caching; files can be replaced by an edit.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if local, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := local.GetFullPath(att.Key)
		if err != nil {
			h.Log.Error("attachment path", zap.Error(err), zap.String("key", att.Key))
			uierrors.RenderServerError(w, r)
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, att.Key, &storage.PresignOptions{
		Expires:            presignTTL,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("attachment presign", zap.Error(err), zap.String("key", att.Key))
		uierrors.RenderServerError(w, r)
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
