// internal/app/features/announcements/view.go
package announcements

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type attachmentVM struct {
	Index int
	Name  string
	Size  int64
}

type announcementViewData struct {
	viewdata.BaseVM
	GroupID     string
	ID          string
	PostTitle   string
	Body        template.HTML
	Category    string
	Tags        []string
	Pinned      bool
	VoteCount   int64
	Voted       bool
	CanModify   bool
	IsAdmin     bool
	Attachments []attachmentVM
	CreatedAt   time.Time
}

// ServeAnnouncement renders one post with its attachments and vote state.
// The announcement must belong to the {id} group, so a crafted URL cannot
// read another group's post through a group the caller is in.
func (h *Handler) ServeAnnouncement(w http.ResponseWriter, r *http.Request) {
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

	voted, err := h.Votes.HasVoted(ctx, a.ID, gate.UserID)
	if err != nil {
		h.Log.Warn("votes HasVoted", zap.Error(err))
	}
	count, err := h.Votes.CountFor(ctx, a.ID)
	if err != nil {
		h.Log.Warn("votes CountFor", zap.Error(err))
		count = a.VoteCount
	}

	decision := h.Policy.CanModifyAnnouncement(ctx, a.ID, gate.UserID)

	attachments := make([]attachmentVM, 0, len(a.Attachments))
	for i, att := range a.Attachments {
		attachments = append(attachments, attachmentVM{
			Index: i,
			Name:  att.Name,
			Size:  att.Size,
		})
	}

	data := announcementViewData{
		BaseVM:      viewdata.NewBaseVM(r, a.Title, boardURL(groupID)),
		GroupID:     groupID.Hex(),
		ID:          a.ID.Hex(),
		PostTitle:   a.Title,
		Body:        template.HTML(a.Body),
		Category:    a.Category,
		Tags:        a.Tags,
		Pinned:      a.Pinned,
		VoteCount:   count,
		Voted:       voted,
		CanModify:   decision.CanModify,
		IsAdmin:     decision.IsAdmin,
		Attachments: attachments,
		CreatedAt:   a.CreatedAt,
	}
	templates.Render(w, r, "announcement_view", data)
}
