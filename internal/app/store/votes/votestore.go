// internal/app/store/votes/votestore.go
package votestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages the votes collection. The unique (announcement_id,
// user_id) index makes Cast idempotent-with-error rather than
// double-counting.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("votes")}
}

// ErrAlreadyVoted is returned when the user has already voted on the
// announcement.
var ErrAlreadyVoted = errors.New("you have already voted on this announcement")

// Cast records an upvote.
func (s *Store) Cast(ctx context.Context, announcementID, userID, groupID primitive.ObjectID) error {
	_, err := s.c.InsertOne(ctx, bson.M{
		"announcement_id": announcementID,
		"user_id":         userID,
		"group_id":        groupID,
		"created_at":      time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrAlreadyVoted
		}
		return err
	}
	return nil
}

// Withdraw removes the user's vote. Withdrawing a vote that does not
// exist is a no-op.
func (s *Store) Withdraw(ctx context.Context, announcementID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"announcement_id": announcementID, "user_id": userID})
	return err
}

// HasVoted reports whether the user has voted on the announcement.
func (s *Store) HasVoted(ctx context.Context, announcementID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"announcement_id": announcementID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountFor returns the vote total for one announcement.
func (s *Store) CountFor(ctx context.Context, announcementID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"announcement_id": announcementID})
}

// CountsForAnnouncements aggregates vote totals for a set of
// announcements in one round trip, for board listings.
func (s *Store) CountsForAnnouncements(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"announcement_id": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$announcement_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

// VotedBy returns the subset of ids the user has voted on, as a set.
// Board pages use this to mark the caller's own votes in one round trip.
func (s *Store) VotedBy(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	voted := make(map[primitive.ObjectID]bool, len(ids))
	if len(ids) == 0 {
		return voted, nil
	}

	cur, err := s.c.Find(ctx, bson.M{
		"user_id":         userID,
		"announcement_id": bson.M{"$in": ids},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			AnnouncementID primitive.ObjectID `bson:"announcement_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		voted[row.AnnouncementID] = true
	}
	return voted, cur.Err()
}

// GroupTotals aggregates vote totals per announcement for one group. The
// vote-count worker uses this to refresh the denormalized counters.
func (s *Store) GroupTotals(ctx context.Context, groupID primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := map[primitive.ObjectID]int64{}
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"group_id": groupID}}},
		{{Key: "$group", Value: bson.M{"_id": "$announcement_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

// AllTotals aggregates vote totals per announcement across the whole
// collection. The recount worker uses this for its periodic sweep.
func (s *Store) AllTotals(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	counts := map[primitive.ObjectID]int64{}
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$announcement_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

// DeleteByAnnouncement removes all votes on an announcement.
func (s *Store) DeleteByAnnouncement(ctx context.Context, announcementID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"announcement_id": announcementID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all votes in a group (group deletion).
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
