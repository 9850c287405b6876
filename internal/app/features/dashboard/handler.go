// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	membershipstore "github.com/corkboardhq/corkboard/internal/app/store/memberships"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recentLimit caps how many announcements show in the activity feed.
const recentLimit = 10

type Handler struct {
	Log           *zap.Logger
	Groups        *groupstore.Store
	Memberships   *membershipstore.Store
	Announcements *announcementstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		Groups:        groupstore.New(db),
		Memberships:   membershipstore.New(db),
		Announcements: announcementstore.New(db),
	}
}

type groupVM struct {
	ID          string
	Name        string
	Description string
	Role        string
	IsAdmin     bool
}

type recentVM struct {
	ID        string
	GroupID   string
	GroupName string
	Title     string
	Category  string
	Pinned    bool
	VoteCount int64
	CreatedAt time.Time
}

type dashboardData struct {
	viewdata.BaseVM
	Groups []groupVM
	Recent []recentVM
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memberships, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		h.Log.Error("dashboard: list memberships", zap.Error(err), zap.String("user_id", userID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	groupIDs := make([]primitive.ObjectID, 0, len(memberships))
	roleByGroup := make(map[primitive.ObjectID]grouppolicy.Role, len(memberships))
	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
		roleByGroup[m.GroupID] = grouppolicy.NormalizeRole(m.Role)
	}

	groups, err := h.Groups.ListByIDs(ctx, groupIDs)
	if err != nil {
		h.Log.Error("dashboard: list groups", zap.Error(err), zap.String("user_id", userID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	groupVMs := make([]groupVM, 0, len(groups))
	nameByGroup := make(map[primitive.ObjectID]string, len(groups))
	for _, g := range groups {
		role := roleByGroup[g.ID]
		nameByGroup[g.ID] = g.Name
		groupVMs = append(groupVMs, groupVM{
			ID:          g.ID.Hex(),
			Name:        g.Name,
			Description: g.Description,
			Role:        string(role),
			IsAdmin:     role == grouppolicy.RoleAdmin,
		})
	}

	recent, err := h.Announcements.ListRecentForGroups(ctx, groupIDs, recentLimit)
	if err != nil {
		h.Log.Error("dashboard: recent announcements", zap.Error(err), zap.String("user_id", userID.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	recentVMs := make([]recentVM, 0, len(recent))
	for _, a := range recent {
		recentVMs = append(recentVMs, recentVM{
			ID:        a.ID.Hex(),
			GroupID:   a.GroupID.Hex(),
			GroupName: nameByGroup[a.GroupID],
			Title:     a.Title,
			Category:  a.Category,
			Pinned:    a.Pinned,
			VoteCount: a.VoteCount,
			CreatedAt: a.CreatedAt,
		})
	}

	templates.Render(w, r, "dashboard", dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
		Groups: groupVMs,
		Recent: recentVMs,
	})
}
