// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/corkboardhq/corkboard/internal/app/features/errors"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/ratelimit"
	"github.com/corkboardhq/corkboard/internal/app/system/status"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	Users         *userstore.Store
	Limiter       *ratelimit.LoginLimiter
	GoogleEnabled bool
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		Users:         userstore.New(db),
		Limiter:       ratelimit.NewLoginLimiter(),
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log In", "/"),
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	if ok, msg := h.Limiter.Check(r, email); !ok {
		h.renderFormWithError(w, r, msg, email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch err {
	case nil:
		// found, continue
	case mongo.ErrNoDocuments:
		// Same message as a wrong password so the form does not reveal
		// which addresses have accounts.
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	default:
		h.Log.Error("login: find user", zap.Error(err))
		uierrors.RenderServerError(w, r)
		return
	}

	if u.Status == status.Disabled {
		h.renderFormWithError(w, r, "Your account is currently disabled. Please contact an administrator.", email)
		return
	}

	if u.AuthMethod == "google" {
		if h.GoogleEnabled {
			redirectURL := "/auth/google"
			if ret := strings.TrimSpace(r.FormValue("return")); ret != "" {
				redirectURL += "?return=" + ret
			}
			http.Redirect(w, r, redirectURL, http.StatusSeeOther)
			return
		}
		h.renderFormWithError(w, r, "This account uses Google sign-in, which is not configured. Please contact an administrator.", email)
		return
	}

	if u.PasswordHash == "" {
		h.renderFormWithError(w, r, "No password set for this account. Please contact an administrator.", email)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		h.Log.Info("login failed: wrong password", zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}

	h.Limiter.ResetEmail(email)

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("login: create session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", email)
		return
	}

	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))

	dest := urlutil.SafeReturn(r.FormValue("return"), "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log In", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
