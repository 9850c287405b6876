// internal/app/features/announcements/create.go
package announcements

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
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

// createAnnouncementInput defines validation rules for a new post.
type createAnnouncementInput struct {
	Title    string `validate:"required,max=300" label:"Title"`
	Body     string `validate:"required" label:"Body"`
	Category string `validate:"max=50" label:"Category"`
}

type announcementFormData struct {
	formutil.Base
	GroupID  string
	Title    string
	Body     string
	Category string
	Tags     string
}

// ServeNewAnnouncement renders the new-post form. Admins and contributors
// only; plain members get a forbidden page.
func (h *Handler) ServeNewAnnouncement(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireContributor(w, r, groupID, "Only admins and contributors can post announcements.")
	if !gate.OK {
		return
	}

	data := announcementFormData{GroupID: groupID.Hex()}
	formutil.SetBase(&data.Base, r, "New Announcement", boardURL(groupID))
	templates.Render(w, r, "announcement_new", data)
}

// HandleCreateAnnouncement processes the new-post form. The body is
// sanitized before it is stored; attachments go to the file store first so
// a failed upload never leaves a post without its files.
func (h *Handler) HandleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireContributor(w, r, groupID, "Only admins and contributors can post announcements.")
	if !gate.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body,
		limits.MaxAnnouncementFormSize+int64(limits.MaxAttachmentsPerPost)*limits.MaxAttachmentSize)
	if err := r.ParseMultipartForm(limits.MaxAnnouncementFormSize); err != nil {
		uierrors.RenderForbidden(w, r, "The submission is too large.", boardURL(groupID))
		return
	}

	title := normalize.Name(r.FormValue("title"))
	body := htmlsanitize.Sanitize(r.FormValue("body"))
	category := strings.ToLower(normalize.QueryParam(r.FormValue("category")))
	tags := splitTags(r.FormValue("tags"))

	input := createAnnouncementInput{Title: title, Body: body, Category: category}
	if result := inputval.Validate(input); result.HasErrors() {
		h.reRenderFormWithError(w, r, "announcement_new", "New Announcement", groupID, title, body, category, r.FormValue("tags"), result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	attachments, err := collectAttachments(ctx, h.Storage, r.MultipartForm)
	if err != nil {
		h.Log.Warn("attachment upload", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		h.reRenderFormWithError(w, r, "announcement_new", "New Announcement", groupID, title, body, category, r.FormValue("tags"), err.Error())
		return
	}

	created, err := h.Announcements.Create(ctx, models.Announcement{
		GroupID:     groupID,
		AuthorID:    gate.UserID,
		Title:       title,
		Body:        body,
		Category:    category,
		Tags:        tags,
		Attachments: attachments,
	})
	if err != nil {
		h.Log.Error("announcement Create", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		h.reRenderFormWithError(w, r, "announcement_new", "New Announcement", groupID, title, body, category, r.FormValue("tags"), "Database error while creating the announcement.")
		return
	}

	http.Redirect(w, r, announcementURL(groupID, created.ID), http.StatusSeeOther)
}

func (h *Handler) reRenderFormWithError(w http.ResponseWriter, r *http.Request, tmpl, title string, groupID primitive.ObjectID, postTitle, body, category, tags, msg string) {
	data := announcementFormData{
		GroupID:  groupID.Hex(),
		Title:    postTitle,
		Body:     body,
		Category: category,
		Tags:     tags,
	}
	formutil.SetBase(&data.Base, r, title, boardURL(groupID))
	data.SetError(msg)
	templates.Render(w, r, tmpl, data)
}

func boardURL(groupID primitive.ObjectID) string {
	return "/groups/" + groupID.Hex() + "/announcements"
}

func announcementURL(groupID, annID primitive.ObjectID) string {
	return boardURL(groupID) + "/" + annID.Hex()
}

// splitTags parses a comma-separated tag list, lowercasing and dropping
// empties and duplicates.
func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	seen := make(map[string]bool, len(parts))
	var tags []string
	for _, p := range parts {
		t := normalize.Tag(p)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
