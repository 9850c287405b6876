// internal/app/features/announcements/vote.go
package announcements

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	votestore "github.com/corkboardhq/corkboard/internal/app/store/votes"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleVote records the caller's upvote. Voting twice is a no-op; the
// caller lands back on the board either way.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	h.handleVoteChange(w, r, true)
}

// HandleUnvote withdraws the caller's vote. Withdrawing a vote that was
// never cast is a no-op.
func (h *Handler) HandleUnvote(w http.ResponseWriter, r *http.Request) {
	h.handleVoteChange(w, r, false)
}

func (h *Handler) handleVoteChange(w http.ResponseWriter, r *http.Request, cast bool) {
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

	if cast {
		err = h.Votes.Cast(ctx, annID, gate.UserID, groupID)
		if err != nil && !errors.Is(err, votestore.ErrAlreadyVoted) {
			h.Log.Error("vote Cast", zap.Error(err),
				zap.String("announcement_id", annID.Hex()))
			uierrors.RenderServerError(w, r)
			return
		}
	} else {
		if err := h.Votes.Withdraw(ctx, annID, gate.UserID); err != nil {
			h.Log.Error("vote Withdraw", zap.Error(err),
				zap.String("announcement_id", annID.Hex()))
			uierrors.RenderServerError(w, r)
			return
		}
	}

	// Keep the denormalized counter close to truth inline; the recount
	// worker reconciles any drift.
	if count, err := h.Votes.CountFor(ctx, annID); err == nil {
		if err := h.Announcements.SetVoteCount(ctx, annID, count); err != nil {
			h.Log.Warn("announcement SetVoteCount", zap.Error(err))
		}
	} else {
		h.Log.Warn("votes CountFor", zap.Error(err))
	}

	h.refreshTotalsAsync(groupID)

	ret := urlutil.SafeReturn(r.FormValue("return"), "", announcementURL(groupID, annID))
	http.Redirect(w, r, ret, http.StatusSeeOther)
}
