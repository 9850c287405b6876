// internal/app/store/announcements/announcementstore.go
package announcementstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the announcements collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

var ErrNotFound = errors.New("announcement not found")

// PageSize is how many announcements a board page shows. Pinned posts are
// listed first regardless of age.
const PageSize = 25

// Create inserts a new announcement. Body must already be sanitized; this
// layer never sees raw user HTML.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Title = strings.TrimSpace(a.Title)
	a.Category = strings.ToLower(strings.TrimSpace(a.Category))
	a.Tags = normalizeTags(a.Tags)
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Announcement, error) {
	var a models.Announcement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Announcement{}, ErrNotFound
		}
		return models.Announcement{}, err
	}
	return a, nil
}

// GetOwner is the point lookup used by the permission evaluator: who wrote
// the announcement and which group owns it. found=false when the id does
// not resolve.
func (s *Store) GetOwner(ctx context.Context, id primitive.ObjectID) (owner models.AnnouncementOwner, found bool, err error) {
	proj := options.FindOne().SetProjection(bson.M{"author_id": 1, "group_id": 1})
	err = s.c.FindOne(ctx, bson.M{"_id": id}, proj).Decode(&owner)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AnnouncementOwner{}, false, nil
	}
	if err != nil {
		return models.AnnouncementOwner{}, false, err
	}
	return owner, true, nil
}

// Update rewrites the editable fields. Author, group, and vote count are
// never touched here.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, body, category string, tags []string, attachments []models.Attachment) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":       strings.TrimSpace(title),
		"body":        body,
		"category":    strings.ToLower(strings.TrimSpace(category)),
		"tags":        normalizeTags(tags),
		"attachments": attachments,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPinned toggles a post's pinned flag.
func (s *Store) SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"pinned":     pinned,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an announcement. Its votes are removed by the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows a board listing. Zero values mean "no filter".
type ListFilter struct {
	Category string
	Tag      string
}

// ListByGroup returns one page of a group's board, pinned posts first,
// then newest first. page is 1-based. hasNext reports whether another page
// exists (look-ahead fetch of one extra row).
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, f ListFilter, page int) (rows []models.Announcement, hasNext bool, err error) {
	if page < 1 {
		page = 1
	}
	filter := bson.M{"group_id": groupID}
	if f.Category != "" {
		filter["category"] = strings.ToLower(strings.TrimSpace(f.Category))
	}
	if f.Tag != "" {
		filter["tags"] = strings.ToLower(strings.TrimSpace(f.Tag))
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "pinned", Value: -1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetSkip(int64(page-1) * PageSize).
		SetLimit(PageSize + 1)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, &rows); err != nil {
		return nil, false, err
	}
	if len(rows) > PageSize {
		rows = rows[:PageSize]
		hasNext = true
	}
	return rows, hasNext, nil
}

// ListRecentForGroups returns the newest announcements across the given
// groups, for the signed-in dashboard.
func (s *Store) ListRecentForGroups(ctx context.Context, groupIDs []primitive.ObjectID, limit int64) ([]models.Announcement, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Announcement
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByGroup removes all of a group's announcements (group deletion).
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetVoteCount writes the denormalized vote total maintained by the
// vote-count worker.
func (s *Store) SetVoteCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"vote_count": count}})
	return err
}

// CurrentVoteCounts returns each announcement's stored vote_count. The
// recount worker diffs this against the votes collection and rewrites only
// the counters that drifted.
func (s *Store) CurrentVoteCounts(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	proj := options.Find().SetProjection(bson.M{"_id": 1, "vote_count": 1})
	cur, err := s.c.Find(ctx, bson.M{}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := map[primitive.ObjectID]int64{}
	for cur.Next(ctx) {
		var row struct {
			ID        primitive.ObjectID `bson:"_id"`
			VoteCount int64              `bson:"vote_count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.VoteCount
	}
	return counts, cur.Err()
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
