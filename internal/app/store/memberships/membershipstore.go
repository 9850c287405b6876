// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the group_memberships collection, the authoritative join
// between users and groups.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

var (
	errBadRole = errors.New(`role must be "admin", "contributor", or "member"`)

	// ErrDuplicateMembership is returned when the user already belongs
	// to the group.
	ErrDuplicateMembership = errors.New("user is already a member of this group")

	// ErrNotFound is returned by role updates and point lookups when no
	// membership row exists.
	ErrNotFound = errors.New("membership not found")
)

func validRole(role string) bool {
	switch role {
	case "admin", "contributor", "member":
		return true
	}
	return false
}

// Add creates a membership. Role validity is enforced here; the unique
// (group_id, user_id) index enforces one row per pair.
func (s *Store) Add(ctx context.Context, groupID, userID primitive.ObjectID, role string) error {
	if !validRole(role) {
		return errBadRole
	}
	_, err := s.c.InsertOne(ctx, bson.M{
		"group_id":   groupID,
		"user_id":    userID,
		"role":       role,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership document for (groupID, userID).
func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	return err
}

// UpdateRole changes the role on an existing membership. Returns
// ErrNotFound if no membership exists; roles are never created here.
func (s *Store) UpdateRole(ctx context.Context, groupID, userID primitive.ObjectID, role string) error {
	if !validRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"group_id": groupID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get is the point lookup used by the permission evaluator: the raw role
// value for (groupID, userID), with found=false when no row exists.
func (s *Store) Get(ctx context.Context, groupID, userID primitive.ObjectID) (role string, found bool, err error) {
	var m models.GroupMembership
	err = s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.Role, true, nil
}

// ListByGroup returns all memberships for a group, admins first, then by
// user id for a stable order.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "role", Value: 1}, {Key: "user_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.GroupMembership
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUser returns all of a user's memberships.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.GroupMembership
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByGroup returns the count of memberships for a group, optionally
// filtered by role. If role is empty, counts all memberships.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"group_id": groupID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// DeleteByGroup removes all memberships for a group (group deletion).
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
