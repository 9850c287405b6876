// internal/app/features/announcements/board.go
package announcements

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	"github.com/corkboardhq/corkboard/internal/app/system/normalize"
	"github.com/corkboardhq/corkboard/internal/app/system/paging"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type boardRowVM struct {
	ID        string
	Title     string
	Category  string
	Tags      []string
	Pinned    bool
	VoteCount int64
	Voted     bool
	CreatedAt time.Time
}

type boardData struct {
	viewdata.BaseVM
	GroupID   string
	GroupName string
	CanPost   bool
	Category  string
	Tag       string
	Rows      []boardRowVM
	Nav       paging.Nav
	TotalsErr string
}

// ServeBoard renders one page of a group's board: pinned posts first, then
// newest first, optionally filtered by category or tag.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderForbidden(w, r, "Bad group id.", "/dashboard")
		return
	}

	gate := h.Gates.RequireMember(w, r, groupID)
	if !gate.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.GetByID(ctx, groupID)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.RenderForbidden(w, r, "Group not found.", "/dashboard")
		return
	}
	if err != nil {
		h.Log.Error("group GetByID", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	filter := announcementstore.ListFilter{
		Category: normalize.QueryParam(query.Get(r, "category")),
		Tag:      normalize.Tag(query.Get(r, "tag")),
	}
	page := paging.ParsePage(r)

	rows, hasNext, err := h.Announcements.ListByGroup(ctx, groupID, filter, page)
	if err != nil {
		h.Log.Error("announcements ListByGroup", zap.Error(err),
			zap.String("group_id", groupID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.ID)
	}
	voted, err := h.Votes.VotedBy(ctx, gate.UserID, ids)
	if err != nil {
		h.Log.Warn("votes VotedBy", zap.Error(err))
		voted = map[primitive.ObjectID]bool{}
	}

	totals := h.loadTotals(ctx, groupID)
	totalsState := h.Totals.Read(totalsKey(groupID))

	vms := make([]boardRowVM, 0, len(rows))
	for _, a := range rows {
		count, ok := totals[a.ID]
		if !ok {
			// Fall back to the denormalized counter for posts the tally
			// has not covered yet.
			count = a.VoteCount
		}
		vms = append(vms, boardRowVM{
			ID:        a.ID.Hex(),
			Title:     a.Title,
			Category:  a.Category,
			Tags:      a.Tags,
			Pinned:    a.Pinned,
			VoteCount: count,
			Voted:     voted[a.ID],
			CreatedAt: a.CreatedAt,
		})
	}

	canPost := gate.Role == grouppolicy.RoleAdmin || gate.Role == grouppolicy.RoleContributor

	data := boardData{
		BaseVM:    viewdata.NewBaseVM(r, group.Name, "/groups/"+groupID.Hex()),
		GroupID:   groupID.Hex(),
		GroupName: group.Name,
		CanPost:   canPost,
		Category:  filter.Category,
		Tag:       filter.Tag,
		Rows:      vms,
		Nav:       paging.BuildNav(page, hasNext),
		TotalsErr: totalsState.Err,
	}
	templates.Render(w, r, "board", data)
}
