// internal/app/store/policylookup/policylookup.go

// Package policylookup adapts the Mongo stores to the permission
// evaluator's Lookup interface. It exists so the evaluator stays a pure
// decision component; everything database-shaped lives here.
package policylookup

import (
	"context"

	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	membershipstore "github.com/corkboardhq/corkboard/internal/app/store/memberships"
	systemrolestore "github.com/corkboardhq/corkboard/internal/app/store/systemroles"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Lookup satisfies grouppolicy.Lookup with point lookups against the
// live collections.
type Lookup struct {
	memberships   *membershipstore.Store
	announcements *announcementstore.Store
	systemRoles   *systemrolestore.Store
}

func New(db *mongo.Database) *Lookup {
	return &Lookup{
		memberships:   membershipstore.New(db),
		announcements: announcementstore.New(db),
		systemRoles:   systemrolestore.New(db),
	}
}

func (l *Lookup) GroupRole(ctx context.Context, groupID, userID primitive.ObjectID) (string, bool, error) {
	return l.memberships.Get(ctx, groupID, userID)
}

func (l *Lookup) AnnouncementOwner(ctx context.Context, announcementID primitive.ObjectID) (models.AnnouncementOwner, bool, error) {
	return l.announcements.GetOwner(ctx, announcementID)
}

func (l *Lookup) HasSystemRole(ctx context.Context, userID primitive.ObjectID, role string) (bool, error) {
	return l.systemRoles.Has(ctx, userID, role)
}
