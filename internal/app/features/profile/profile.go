// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	"github.com/corkboardhq/corkboard/internal/app/system/authz"
	"github.com/corkboardhq/corkboard/internal/app/system/limits"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	FullName   string
	Email      string
	AuthMethod string

	// Password section is only shown for password-auth accounts.
	ShowPasswordSection bool

	Error   string
	Success string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.Log.Error("profile: load user", zap.Error(err), zap.String("user_id", uid.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	data := h.viewData(r, u)
	switch r.URL.Query().Get("success") {
	case "name":
		data.Success = "Name updated."
	case "password":
		data.Success = "Password changed."
	}

	templates.Render(w, r, "profile", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/name                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxProfileFormSize)
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	if fullName == "" {
		h.rerenderWithError(w, r, uid, "Please enter a name.")
		return
	}

	if err := h.Users.UpdateProfile(ctx, uid, fullName); err != nil {
		h.Log.Error("profile: update name", zap.Error(err), zap.String("user_id", uid.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	http.Redirect(w, r, "/profile?success=name", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/password                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxProfileFormSize)
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.Log.Error("profile: load user", zap.Error(err), zap.String("user_id", uid.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	if u.AuthMethod != "password" {
		h.rerenderWithError(w, r, uid, "Password change is only available for password accounts.")
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		h.rerenderWithError(w, r, uid, "Current password is incorrect.")
		return
	}
	if len(newPassword) < minPasswordLen {
		h.rerenderWithError(w, r, uid, "Password must be at least 8 characters.")
		return
	}
	if newPassword != confirm {
		h.rerenderWithError(w, r, uid, "New passwords do not match.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("profile: hash password", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	if err := h.Users.UpdatePassword(ctx, uid, string(hash)); err != nil {
		h.Log.Error("profile: update password", zap.Error(err), zap.String("user_id", uid.Hex()))
		uierrors.RenderServerError(w, r)
		return
	}

	h.Log.Info("password changed", zap.String("user_id", uid.Hex()))

	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

func (h *Handler) viewData(r *http.Request, u *models.User) profileData {
	return profileData{
		BaseVM:              viewdata.NewBaseVM(r, "Profile", "/dashboard"),
		FullName:            u.FullName,
		Email:               u.Email,
		AuthMethod:          u.AuthMethod,
		ShowPasswordSection: u.AuthMethod == "password",
	}
}

func (h *Handler) rerenderWithError(w http.ResponseWriter, r *http.Request, uid primitive.ObjectID, msg string) {
	// Form state is trivial here, so re-reading the user keeps this simple.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderServerError(w, r)
		return
	}

	data := h.viewData(r, u)
	data.Error = msg
	templates.Render(w, r, "profile", data)
}
