// internal/domain/models/vote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote is one user's upvote on an announcement. At most one document per
// (announcement_id, user_id), enforced by a unique index. GroupID is
// denormalized so per-group cleanup does not need a join.
type Vote struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AnnouncementID primitive.ObjectID `bson:"announcement_id" json:"announcement_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID        primitive.ObjectID `bson:"group_id" json:"group_id"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
