// internal/app/store/systemroles/systemrolestore.go
package systemrolestore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages the system_roles collection: one document per
// (user_id, role), where the only role in use is "system_admin".
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("system_roles")}
}

// Grant gives userID the role. Granting an already-held role is a no-op.
func (s *Store) Grant(ctx context.Context, userID primitive.ObjectID, role string) error {
	_, err := s.c.InsertOne(ctx, bson.M{
		"user_id":    userID,
		"role":       role,
		"created_at": time.Now().UTC(),
	})
	if err != nil && wafflemongo.IsDup(err) {
		return nil
	}
	return err
}

// Revoke removes the role from userID. Revoking an unheld role is a no-op.
func (s *Store) Revoke(ctx context.Context, userID primitive.ObjectID, role string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "role": role})
	return err
}

// Has reports whether userID holds the role.
func (s *Store) Has(ctx context.Context, userID primitive.ObjectID, role string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "role": role})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
