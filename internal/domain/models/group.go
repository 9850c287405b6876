// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a tenant unit: it owns announcements and memberships.
//
// NOTE:
//   - Member lists are not embedded on Group. All membership is stored
//     in the group_memberships collection.
//   - JoinCode is the human-shareable code users type to join; it is
//     unique across all groups and stored uppercased.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`
	JoinCode    string             `bson:"join_code" json:"join_code"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`

	Status string `bson:"status" json:"status"` // "active"

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
