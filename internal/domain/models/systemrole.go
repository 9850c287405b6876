// internal/domain/models/systemrole.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SystemRole grants a system-wide capability to a user. The only role in
// use is "system_admin"; a user either has the document or does not. It is
// orthogonal to group membership.
type SystemRole struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"` // "system_admin"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
