// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the signed-in user's name, Mongo ObjectID, and a found
// flag. If no user is present in context or the user ID is malformed, it
// returns "", NilObjectID, false. Callers can trust that ok=true means a
// valid, authenticated user with a valid ObjectID.
//
// Group roles are not carried on the session; resolve them through the
// permission evaluator with the group in question.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		// This should not happen in normal operation; indicates session corruption.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// UserID returns just the current user's ObjectID, or NilObjectID and false
// when nobody is signed in.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	_, id, ok := UserCtx(r)
	return id, ok
}

// IsSystemAdmin reports whether the current request's user holds the
// system_admin role. The flag is set fresh on each request by the session
// user fetcher.
func IsSystemAdmin(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.IsSystemAdmin
}
