package bootstrap

import (
	"testing"

	systemrolestore "github.com/corkboardhq/corkboard/internal/app/store/systemroles"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureSystemAdmin_CreatesAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureSystemAdmin(ctx, deps, "admin@example.com", zap.NewNop()); err != nil {
		t.Fatalf("ensureSystemAdmin failed: %v", err)
	}

	u, err := userstore.New(db).GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("expected the account to be created: %v", err)
	}
	if u.AuthMethod != "google" {
		t.Errorf("AuthMethod: got %q, want google", u.AuthMethod)
	}
	if u.Status != "active" {
		t.Errorf("Status: got %q, want active", u.Status)
	}

	has, err := systemrolestore.New(db).Has(ctx, u.ID, "system_admin")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("expected the system_admin role to be granted")
	}
}

func TestEnsureSystemAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := fixtures.CreateUser(ctx, "Existing User", "existing@example.com")
	deps := DBDeps{MongoDatabase: db}

	if err := ensureSystemAdmin(ctx, deps, "existing@example.com", zap.NewNop()); err != nil {
		t.Fatalf("ensureSystemAdmin failed: %v", err)
	}

	has, err := systemrolestore.New(db).Has(ctx, existing.ID, "system_admin")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("expected the existing account to gain system_admin")
	}

	// The account itself is untouched.
	u, err := userstore.New(db).GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.AuthMethod != "password" || u.FullName != "Existing User" {
		t.Errorf("account changed: %+v", u)
	}
}

func TestEnsureSystemAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureSystemAdmin(ctx, deps, "admin@example.com", zap.NewNop()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := ensureSystemAdmin(ctx, deps, "admin@example.com", zap.NewNop()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
}

func TestEnsureSystemAdmin_BlankEmailDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureSystemAdmin(ctx, deps, "", zap.NewNop()); err != nil {
		t.Fatalf("blank email should be a no-op, got %v", err)
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no users to be created, found %d", n)
	}
}
