// internal/app/features/announcements/handler.go
package announcements

import (
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	groupstore "github.com/corkboardhq/corkboard/internal/app/store/groups"
	votestore "github.com/corkboardhq/corkboard/internal/app/store/votes"
	"github.com/corkboardhq/corkboard/internal/app/system/actioncache"
	"github.com/corkboardhq/corkboard/internal/app/system/gates"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// VoteTotals is the cached shape for one group's vote tallies, keyed by
// announcement id.
type VoteTotals map[primitive.ObjectID]int64

// Handler is the shared dependency container for the announcements feature.
// Storage holds attachment files; Totals caches per-group vote tallies under
// "votetotals-<groupID>" keys so board pages can show slightly stale counts
// instead of failing when the aggregation does.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger

	Gates  *gates.Gates
	Policy *grouppolicy.Evaluator

	Groups        *groupstore.Store
	Announcements *announcementstore.Store
	Votes         *votestore.Store

	Storage storage.Store
	Totals  *actioncache.Store[VoteTotals]
}

// NewHandler constructs an announcements Handler. Called from bootstrap
// where the database, policy evaluator, file store, and logger already
// exist.
func NewHandler(db *mongo.Database, policy *grouppolicy.Evaluator, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		Gates:         gates.New(policy),
		Policy:        policy,
		Groups:        groupstore.New(db),
		Announcements: announcementstore.New(db),
		Votes:         votestore.New(db),
		Storage:       store,
		Totals:        actioncache.New[VoteTotals](logger),
	}
}
