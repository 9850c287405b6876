// internal/app/features/announcements/edit.go
package announcements

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	"github.com/corkboardhq/corkboard/internal/app/system/formutil"
	"github.com/corkboardhq/corkboard/internal/app/system/htmlsanitize"
	"github.com/corkboardhq/corkboard/internal/app/system/inputval"
	"github.com/corkboardhq/corkboard/internal/app/system/limits"
	"github.com/corkboardhq/corkboard/internal/app/system/normalize"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type editAnnouncementData struct {
	formutil.Base
	GroupID  string
	ID       string
	Title    string
	Body     string
	Category string
	Tags     string
}

// loadForModify fetches the announcement, checks it belongs to the group,
// and enforces the modify policy (author or group admin). ok=false means a
// response has already been written.
func (h *Handler) loadForModify(ctx context.Context, w http.ResponseWriter, r *http.Request, groupID, annID, userID primitive.ObjectID) (models.Announcement, bool) {
	a, err := h.Announcements.GetByID(ctx, annID)
	if errors.Is(err, announcementstore.ErrNotFound) || (err == nil && a.GroupID != groupID) {
		uierrors.RenderForbidden(w, r, "Announcement not found.", boardURL(groupID))
		return models.Announcement{}, false
	}
	if err != nil {
		h.Log.Error("announcement GetByID", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return models.Announcement{}, false
	}

	decision := h.Policy.CanModifyAnnouncement(ctx, annID, userID)
	if !decision.CanModify {
		uierrors.RenderForbidden(w, r, "Only the author or a group admin can change this announcement.", announcementURL(groupID, annID))
		return models.Announcement{}, false
	}
	return a, true
}

// ServeEditAnnouncement renders the edit form for the author or a group
// admin.
func (h *Handler) ServeEditAnnouncement(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadForModify(ctx, w, r, groupID, annID, gate.UserID)
	if !ok {
		return
	}

	data := editAnnouncementData{
		GroupID:  groupID.Hex(),
		ID:       a.ID.Hex(),
		Title:    a.Title,
		Body:     a.Body,
		Category: a.Category,
		Tags:     strings.Join(a.Tags, ", "),
	}
	formutil.SetBase(&data.Base, r, "Edit Announcement", announcementURL(groupID, annID))
	templates.Render(w, r, "announcement_edit", data)
}

// HandleEditAnnouncement processes the edit form. New attachments are
// appended up to the per-post cap; existing ones are kept.
func (h *Handler) HandleEditAnnouncement(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body,
		limits.MaxAnnouncementFormSize+int64(limits.MaxAttachmentsPerPost)*limits.MaxAttachmentSize)
	if err := r.ParseMultipartForm(limits.MaxAnnouncementFormSize); err != nil {
		uierrors.RenderForbidden(w, r, "The submission is too large.", announcementURL(groupID, annID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, ok := h.loadForModify(ctx, w, r, groupID, annID, gate.UserID)
	if !ok {
		return
	}

	title := normalize.Name(r.FormValue("title"))
	body := htmlsanitize.Sanitize(r.FormValue("body"))
	category := strings.ToLower(normalize.QueryParam(r.FormValue("category")))
	tags := splitTags(r.FormValue("tags"))

	input := createAnnouncementInput{Title: title, Body: body, Category: category}
	if result := inputval.Validate(input); result.HasErrors() {
		h.reRenderEditWithError(w, r, groupID, annID, title, body, category, r.FormValue("tags"), result.First())
		return
	}

	attachments := a.Attachments
	if form := r.MultipartForm; form != nil && len(form.File["attachments"]) > 0 {
		if len(attachments)+len(form.File["attachments"]) > limits.MaxAttachmentsPerPost {
			h.reRenderEditWithError(w, r, groupID, annID, title, body, category, r.FormValue("tags"),
				"This announcement already has the maximum number of attachments.")
			return
		}
		added, err := collectAttachments(ctx, h.Storage, form)
		if err != nil {
			h.Log.Warn("attachment upload", zap.Error(err))
			h.reRenderEditWithError(w, r, groupID, annID, title, body, category, r.FormValue("tags"), err.Error())
			return
		}
		attachments = append(attachments, added...)
	}

	if err := h.Announcements.Update(ctx, annID, title, body, category, tags, attachments); err != nil {
		h.Log.Error("announcement Update", zap.Error(err),
			zap.String("announcement_id", annID.Hex()))
		h.reRenderEditWithError(w, r, groupID, annID, title, body, category, r.FormValue("tags"),
			"Database error while updating the announcement.")
		return
	}

	http.Redirect(w, r, announcementURL(groupID, annID), http.StatusSeeOther)
}

func (h *Handler) reRenderEditWithError(w http.ResponseWriter, r *http.Request, groupID, annID primitive.ObjectID, title, body, category, tags, msg string) {
	data := editAnnouncementData{
		GroupID:  groupID.Hex(),
		ID:       annID.Hex(),
		Title:    title,
		Body:     body,
		Category: category,
		Tags:     tags,
	}
	formutil.SetBase(&data.Base, r, "Edit Announcement", announcementURL(groupID, annID))
	data.SetError(msg)
	templates.Render(w, r, "announcement_edit", data)
}
