// internal/app/features/groups/handler.go
package groups

import (
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	membershipstore "github.com/corkboardhq/corkboard/internal/app/store/memberships"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	votestore "github.com/corkboardhq/corkboard/internal/app/store/votes"
	"github.com/corkboardhq/corkboard/internal/app/system/gates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// It holds the stores, the authorization gates, and the logger so the
// various handlers (create, join, view, manage, delete) can share them.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger

	Gates  *gates.Gates
	Policy *grouppolicy.Evaluator

	Groups        *groupstore.Store
	Memberships   *membershipstore.Store
	Announcements *announcementstore.Store
	Votes         *votestore.Store
	Users         *userstore.Store
}

// NewHandler constructs a groups Handler. It is typically called from the
// bootstrap BuildHandler function, where the database, policy evaluator,
// and logger are already initialized.
func NewHandler(db *mongo.Database, policy *grouppolicy.Evaluator, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		Gates:         gates.New(policy),
		Policy:        policy,
		Groups:        groupstore.New(db),
		Memberships:   membershipstore.New(db),
		Announcements: announcementstore.New(db),
		Votes:         votestore.New(db),
		Users:         userstore.New(db),
	}
}
