package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corkboardhq/corkboard/internal/app/features/logout"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test-session", "", 0, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return logout.NewHandler(sm, zap.NewNop())
}

func TestServeLogout_RedirectsHome(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()

	h.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()

	h.ServeLogout(rec, req)

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("expected deletion cookie (MaxAge < 0), got MaxAge=%d", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected a deletion cookie for the session")
	}
}

func TestServeLogout_HTMXRedirect(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect: got %q, want /", got)
	}
}
