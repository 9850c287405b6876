// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/limits"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Users:      userstore.New(db),
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error    string
	FullName string
	Email    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(r, "Sign Up", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxProfileFormSize)
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r)
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if fullName == "" || email == "" {
		h.renderFormWithError(w, r, "Please enter your name and email.", fullName, email)
		return
	}
	if len(password) < minPasswordLen {
		h.renderFormWithError(w, r, "Password must be at least 8 characters.", fullName, email)
		return
	}
	if password != confirm {
		h.renderFormWithError(w, r, "Passwords do not match.", fullName, email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("signup: hash password", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			h.renderFormWithError(w, r, "An account with this email already exists. Try logging in instead.", fullName, email)
			return
		}
		h.Log.Error("signup: create user", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("signup: create session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, fullName, email string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Sign Up", "/"),
		Error:    msg,
		FullName: fullName,
		Email:    email,
	})
}
