package groups_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/corkboardhq/corkboard/internal/app/features/groups"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	"github.com/corkboardhq/corkboard/internal/app/store/policylookup"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	policy := grouppolicy.New(policylookup.New(db), zap.NewNop())
	return groups.NewHandler(db, policy, zap.NewNop()), testutil.NewFixtures(t, db)
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Rendering may panic if the template registry is not built in tests; the
// store writes before the render call are what these tests exercise.
func renderSafe(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestHandleCreateGroup_CreatorBecomesAdmin(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Pat Lee", "pat@example.com")

	req := postForm("/groups", url.Values{
		"name":        {"Chess Club"},
		"description": {"Weekly games"},
	})
	req = testutil.WithUser(req, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := httptest.NewRecorder()

	h.HandleCreateGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/groups/") {
		t.Fatalf("Location: got %q, want /groups/<id>", loc)
	}

	gid, err := primitive.ObjectIDFromHex(strings.TrimPrefix(loc, "/groups/"))
	if err != nil {
		t.Fatalf("redirect target is not a group id: %q", loc)
	}
	g, err := h.Groups.GetByID(ctx, gid)
	if err != nil {
		t.Fatalf("created group not found: %v", err)
	}
	if g.Name != "Chess Club" {
		t.Errorf("Name: got %q", g.Name)
	}
	if g.JoinCode == "" {
		t.Error("created group has no join code")
	}
	role, found, err := h.Memberships.Get(ctx, gid, u.ID)
	if err != nil || !found {
		t.Fatalf("creator membership missing: found=%v err=%v", found, err)
	}
	if role != "admin" {
		t.Errorf("creator role: got %q, want admin", role)
	}
}

func TestHandleCreateGroup_MissingName(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Pat Lee", "pat@example.com")

	req := postForm("/groups", url.Values{"name": {"   "}})
	req = testutil.WithUser(req, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := httptest.NewRecorder()

	renderSafe(func() { h.HandleCreateGroup(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Error("blank name should not create a group")
	}
	rows, err := h.Memberships.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no memberships, got %d", len(rows))
	}
}

func TestHandleJoinGroup_ByCode(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	g := fx.CreateGroup(ctx, "Book Club", owner.ID)
	fx.CreateMembership(ctx, g.ID, owner.ID, "admin")
	joiner := fx.CreateUser(ctx, "Joiner", "joiner@example.com")

	// Codes are normalized, so pasted lowercase with spaces still works.
	req := postForm("/groups/join", url.Values{"code": {"  " + strings.ToLower(g.JoinCode) + "  "}})
	req = testutil.WithUser(req, testutil.UserFor(joiner.ID, joiner.FullName, joiner.Email))
	rec := httptest.NewRecorder()

	h.HandleJoinGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/groups/"+g.ID.Hex() {
		t.Errorf("Location: got %q", loc)
	}
	role, found, err := h.Memberships.Get(ctx, g.ID, joiner.ID)
	if err != nil || !found {
		t.Fatalf("joiner membership missing: found=%v err=%v", found, err)
	}
	if role != "member" {
		t.Errorf("joiner role: got %q, want member", role)
	}
}

func TestHandleJoinGroup_UnknownCode(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Pat Lee", "pat@example.com")

	req := postForm("/groups/join", url.Values{"code": {"NOSUCHCODE"}})
	req = testutil.WithUser(req, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := httptest.NewRecorder()

	renderSafe(func() { h.HandleJoinGroup(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Error("unknown code should not redirect to a group")
	}
}

func TestHandleJoinGroup_AlreadyMember(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Pat Lee", "pat@example.com")
	g := fx.CreateGroup(ctx, "Book Club", u.ID)
	fx.CreateMembership(ctx, g.ID, u.ID, "contributor")

	req := postForm("/groups/join", url.Values{"code": {g.JoinCode}})
	req = testutil.WithUser(req, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := httptest.NewRecorder()

	h.HandleJoinGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("joining twice should still land on the group, got %d", rec.Code)
	}
	role, _, err := h.Memberships.Get(ctx, g.ID, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if role != "contributor" {
		t.Errorf("existing role must be preserved, got %q", role)
	}
}

func TestHandleChangeRole_LastAdminKept(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	g := fx.CreateGroup(ctx, "Solo Group", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")

	req := postForm("/groups/"+g.ID.Hex()+"/members/role", url.Values{
		"user_id": {admin.ID.Hex()},
		"role":    {"member"},
	})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(admin.ID, admin.FullName, admin.Email))
	rec := httptest.NewRecorder()

	renderSafe(func() { h.HandleChangeRole(rec, req) })

	role, _, err := h.Memberships.Get(ctx, g.ID, admin.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if role != "admin" {
		t.Errorf("last admin must not be demoted, got role %q", role)
	}
}

func TestHandleChangeRole_PromoteMember(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")
	fx.CreateMembership(ctx, g.ID, member.ID, "member")

	req := postForm("/groups/"+g.ID.Hex()+"/members/role", url.Values{
		"user_id": {member.ID.Hex()},
		"role":    {"contributor"},
	})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(admin.ID, admin.FullName, admin.Email))
	rec := httptest.NewRecorder()

	h.HandleChangeRole(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	role, _, err := h.Memberships.Get(ctx, g.ID, member.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if role != "contributor" {
		t.Errorf("role: got %q, want contributor", role)
	}
}

func TestHandleChangeRole_RequiresAdmin(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")
	fx.CreateMembership(ctx, g.ID, member.ID, "member")

	// A plain member tries to promote themselves.
	req := postForm("/groups/"+g.ID.Hex()+"/members/role", url.Values{
		"user_id": {member.ID.Hex()},
		"role":    {"admin"},
	})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(member.ID, member.FullName, member.Email))
	rec := httptest.NewRecorder()

	renderSafe(func() { h.HandleChangeRole(rec, req) })

	role, _, err := h.Memberships.Get(ctx, g.ID, member.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if role != "member" {
		t.Errorf("non-admin must not change roles, got %q", role)
	}
}

func TestHandleRemoveMember(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")
	fx.CreateMembership(ctx, g.ID, member.ID, "member")

	req := postForm("/groups/"+g.ID.Hex()+"/members/remove", url.Values{
		"user_id": {member.ID.Hex()},
	})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(admin.ID, admin.FullName, admin.Email))
	rec := httptest.NewRecorder()

	h.HandleRemoveMember(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	_, found, err := h.Memberships.Get(ctx, g.ID, member.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("membership should be gone after removal")
	}
}

func TestHandleLeaveGroup_LastAdminBlocked(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	g := fx.CreateGroup(ctx, "Solo Group", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")

	req := postForm("/groups/"+g.ID.Hex()+"/leave", nil)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(admin.ID, admin.FullName, admin.Email))
	rec := httptest.NewRecorder()

	renderSafe(func() { h.HandleLeaveGroup(rec, req) })

	_, found, err := h.Memberships.Get(ctx, g.ID, admin.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Error("last admin must not be able to leave")
	}
}

func TestHandleLeaveGroup(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")
	fx.CreateMembership(ctx, g.ID, member.ID, "member")

	req := postForm("/groups/"+g.ID.Hex()+"/leave", nil)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(member.ID, member.FullName, member.Email))
	rec := httptest.NewRecorder()

	h.HandleLeaveGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	_, found, err := h.Memberships.Get(ctx, g.ID, member.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("membership should be gone after leaving")
	}
}

func TestHandleDeleteGroup_Cascades(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")
	fx.CreateMembership(ctx, g.ID, member.ID, "member")
	a := fx.CreateAnnouncement(ctx, g.ID, admin.ID, "Meeting moved")
	fx.CreateVote(ctx, a.ID, member.ID, g.ID)

	req := postForm("/groups/"+g.ID.Hex()+"/delete", nil)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(admin.ID, admin.FullName, admin.Email))
	rec := httptest.NewRecorder()

	h.HandleDeleteGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if _, err := h.Groups.GetByID(ctx, g.ID); err == nil {
		t.Error("group should be deleted")
	}
	rows, err := h.Memberships.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("memberships should be deleted, %d remain", len(rows))
	}
	if _, err := h.Announcements.GetByID(ctx, a.ID); err == nil {
		t.Error("announcements should be deleted")
	}
	n, err := h.Votes.CountFor(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountFor: %v", err)
	}
	if n != 0 {
		t.Errorf("votes should be deleted, %d remain", n)
	}
}

func TestHandleDeleteGroup_NonAdminForbidden(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")
	fx.CreateMembership(ctx, g.ID, member.ID, "member")

	req := postForm("/groups/"+g.ID.Hex()+"/delete", nil)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(member.ID, member.FullName, member.Email))
	rec := httptest.NewRecorder()

	renderSafe(func() { h.HandleDeleteGroup(rec, req) })

	if _, err := h.Groups.GetByID(ctx, g.ID); err != nil {
		t.Error("group must survive a non-admin delete attempt")
	}
}

func TestHandleDeleteGroup_SystemAdminAllowed(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com")
	sysadmin := fx.CreateUser(ctx, "Root", "root@example.com")
	fx.GrantSystemAdmin(ctx, sysadmin.ID)
	g := fx.CreateGroup(ctx, "Book Club", admin.ID)
	fx.CreateMembership(ctx, g.ID, admin.ID, "admin")

	req := postForm("/groups/"+g.ID.Hex()+"/delete", nil)
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	req = testutil.WithUser(req, testutil.UserFor(sysadmin.ID, sysadmin.FullName, sysadmin.Email))
	rec := httptest.NewRecorder()

	h.HandleDeleteGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if _, err := h.Groups.GetByID(ctx, g.ID); err == nil {
		t.Error("group should be deleted by a system admin")
	}
}
