package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/corkboardhq/corkboard/internal/app/system/joincode"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active password user and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefix",
		AuthMethod:   "password",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture: insert user: %v", err)
	}
	return u
}

// CreateUserWithPassword inserts an active password user with a real
// bcrypt hash, for tests that exercise the login flow.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, fullName, email, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: passwordHash,
		AuthMethod:   "password",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture: insert user: %v", err)
	}
	return u
}

// DisableUser marks an existing user as disabled.
func (f *Fixtures) DisableUser(ctx context.Context, userID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"status": "disabled", "updated_at": time.Now().UTC()}})
	if err != nil {
		f.t.Fatalf("fixture: disable user: %v", err)
	}
}

// CreateGroup inserts a group created by the given user and returns it.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, createdBy primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		JoinCode:  joincode.Generate(),
		CreatedBy: createdBy,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("fixture: insert group: %v", err)
	}
	return g
}

// CreateMembership links a user to a group with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID primitive.ObjectID, role string) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture: insert membership: %v", err)
	}
	return m
}

// CreateAnnouncement inserts an announcement and returns it.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, groupID, authorID primitive.ObjectID, title string) models.Announcement {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Announcement{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		AuthorID:  authorID,
		Title:     title,
		Body:      "<p>" + title + "</p>",
		Category:  "general",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("announcements").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("fixture: insert announcement: %v", err)
	}
	return a
}

// CreateVote records a vote by userID on the announcement.
func (f *Fixtures) CreateVote(ctx context.Context, announcementID, userID, groupID primitive.ObjectID) models.Vote {
	f.t.Helper()

	v := models.Vote{
		ID:             primitive.NewObjectID(),
		AnnouncementID: announcementID,
		UserID:         userID,
		GroupID:        groupID,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := f.db.Collection("votes").InsertOne(ctx, v); err != nil {
		f.t.Fatalf("fixture: insert vote: %v", err)
	}
	return v
}

// GrantSystemAdmin gives the user the system_admin role.
func (f *Fixtures) GrantSystemAdmin(ctx context.Context, userID primitive.ObjectID) {
	f.t.Helper()

	role := models.SystemRole{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Role:      "system_admin",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("system_roles").InsertOne(ctx, role); err != nil {
		f.t.Fatalf("fixture: insert system role: %v", err)
	}
}
