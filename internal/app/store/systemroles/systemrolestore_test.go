package systemrolestore_test

import (
	"testing"

	systemrolestore "github.com/corkboardhq/corkboard/internal/app/store/systemroles"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GrantAndHas(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := systemrolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()

	has, err := store.Has(ctx, uid, "system_admin")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("expected no role before Grant")
	}

	if err := store.Grant(ctx, uid, "system_admin"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	has, err = store.Has(ctx, uid, "system_admin")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("expected the role after Grant")
	}
}

func TestStore_Grant_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := systemrolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	if err := store.Grant(ctx, uid, "system_admin"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := store.Grant(ctx, uid, "system_admin"); err != nil {
		t.Errorf("re-granting a held role should be a no-op, got %v", err)
	}
}

func TestStore_Revoke(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := systemrolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	if err := store.Grant(ctx, uid, "system_admin"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := store.Revoke(ctx, uid, "system_admin"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	has, err := store.Has(ctx, uid, "system_admin")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("role should be gone after Revoke")
	}

	// Revoking an unheld role is a no-op.
	if err := store.Revoke(ctx, uid, "system_admin"); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
}
