package signup_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/corkboardhq/corkboard/internal/app/features/signup"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*signup.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test-session", "", 0, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return signup.NewHandler(db, sm, zap.NewNop()), testutil.NewFixtures(t, db)
}

func postSignup(t *testing.T, h *signup.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	// Error paths render a template, which may panic when the registry is
	// not built in tests. Recover so assertions on the recorder still run.
	func() {
		defer func() { _ = recover() }()
		h.HandleSignupPost(rec, req)
	}()
	return rec
}

func signupForm(name, email, password, confirm string) url.Values {
	form := url.Values{}
	form.Set("full_name", name)
	form.Set("email", email)
	form.Set("password", password)
	form.Set("confirm_password", confirm)
	return form
}

func TestHandleSignupPost_Success(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postSignup(t, h, signupForm("Pat Lee", "pat@example.com", "secret-pass", "secret-pass"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want /dashboard", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected signup to create a session")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := h.Users.GetByEmail(ctx, "pat@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.AuthMethod != "password" {
		t.Errorf("auth_method: got %q, want password", u.AuthMethod)
	}
	if u.Status != "active" {
		t.Errorf("status: got %q, want active", u.Status)
	}
}

func TestHandleSignupPost_DuplicateEmail(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "Pat Lee", "pat@example.com")

	rec := postSignup(t, h, signupForm("Other Pat", "PAT@example.com", "secret-pass", "secret-pass"))

	if rec.Code == http.StatusSeeOther {
		t.Error("duplicate email must not create an account")
	}
}

func TestHandleSignupPost_PasswordTooShort(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postSignup(t, h, signupForm("Pat Lee", "pat@example.com", "short", "short"))

	if rec.Code == http.StatusSeeOther {
		t.Error("short password must be rejected")
	}
}

func TestHandleSignupPost_PasswordMismatch(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postSignup(t, h, signupForm("Pat Lee", "pat@example.com", "secret-pass", "different"))

	if rec.Code == http.StatusSeeOther {
		t.Error("mismatched passwords must be rejected")
	}
}
