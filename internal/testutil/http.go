package testutil

import (
	"net/http"

	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID            string
	Name          string
	Email         string
	IsSystemAdmin bool
}

// SignedInUser returns a plain signed-in TestUser.
func SignedInUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test User",
		Email: "user@test.com",
	}
}

// SystemAdminUser returns a TestUser with the system_admin flag set.
func SystemAdminUser() TestUser {
	return TestUser{
		ID:            primitive.NewObjectID().Hex(),
		Name:          "Test Admin",
		Email:         "admin@test.com",
		IsSystemAdmin: true,
	}
}

// UserFor returns a TestUser whose ID matches an existing fixture user, so
// handler tests act as a user that really exists in the test database.
func UserFor(id primitive.ObjectID, name, email string) TestUser {
	return TestUser{ID: id.Hex(), Name: name, Email: email}
}

// WithUser injects the TestUser into the request context, simulating what
// the session middleware does for a signed-in request.
func WithUser(r *http.Request, u TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		IsSystemAdmin: u.IsSystemAdmin,
	})
}
