package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName:     "  Pat Lee  ",
		Email:        " Pat@Example.com ",
		PasswordHash: "$2a$10$somethinghashedsomethinghashedsome",
		AuthMethod:   "password",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FullName != "Pat Lee" {
		t.Errorf("FullName: got %q, want trimmed", created.FullName)
	}
	if created.EmailCI != "pat@example.com" {
		t.Errorf("EmailCI: got %q", created.EmailCI)
	}
	if created.Status != "active" {
		t.Errorf("Status: got %q, want active", created.Status)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := models.User{
		FullName:     "Pat Lee",
		Email:        "pat@example.com",
		PasswordHash: "$2a$10$somethinghashedsomethinghashedsome",
		AuthMethod:   "password",
	}
	if _, err := store.Create(ctx, u); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same address with different case is the same identity.
	u.Email = "PAT@example.com"
	_, err := store.Create(ctx, u)
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Create_PasswordAuthNeedsHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FullName:   "Pat Lee",
		Email:      "pat@example.com",
		AuthMethod: "password",
	})
	if err == nil {
		t.Error("expected an error for a password account without a hash")
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fixtures.CreateUser(ctx, "Pat Lee", "pat@example.com")

	got, err := store.GetByEmail(ctx, "  PAT@Example.COM ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %s, want %s", got.ID.Hex(), created.ID.Hex())
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fixtures.CreateUser(ctx, "Pat Lee", "pat@example.com")

	if err := store.UpdateProfile(ctx, created.ID, "  Pat R. Lee "); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FullName != "Pat R. Lee" {
		t.Errorf("FullName: got %q", got.FullName)
	}
	if got.Email != created.Email {
		t.Error("email must not change through UpdateProfile")
	}
}

func TestStore_UpdatePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fixtures.CreateUser(ctx, "Pat Lee", "pat@example.com")

	if err := store.UpdatePassword(ctx, created.ID, "$2a$10$replacementhashreplacementhashrepl"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PasswordHash != "$2a$10$replacementhashreplacementhashrepl" {
		t.Error("expected the stored hash to be replaced")
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fixtures.CreateUser(ctx, "Pat Lee", "pat@example.com")

	if err := store.SetStatus(ctx, created.ID, "disabled"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, _ := store.GetByID(ctx, created.ID)
	if got.Status != "disabled" {
		t.Errorf("Status: got %q, want disabled", got.Status)
	}

	if err := store.SetStatus(ctx, created.ID, "banned"); err == nil {
		t.Error("expected an error for an unknown status")
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := fixtures.CreateUser(ctx, "Beta", "beta@example.com")
	a := fixtures.CreateUser(ctx, "Alpha", "alpha@example.com")
	fixtures.CreateUser(ctx, "Unrelated", "unrelated@example.com")

	got, err := store.ListByIDs(ctx, []primitive.ObjectID{b.ID, a.ID})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d users, want 2", len(got))
	}
	if got[0].FullName != "Alpha" || got[1].FullName != "Beta" {
		t.Errorf("expected name order Alpha, Beta; got %q, %q", got[0].FullName, got[1].FullName)
	}

	empty, err := store.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs(nil) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Error("expected no users for empty id list")
	}
}
