package votestore_test

import (
	"errors"
	"testing"

	votestore "github.com/corkboardhq/corkboard/internal/app/store/votes"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Cast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	aid := primitive.NewObjectID()
	uid := primitive.NewObjectID()
	gid := primitive.NewObjectID()

	if err := store.Cast(ctx, aid, uid, gid); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	voted, err := store.HasVoted(ctx, aid, uid)
	if err != nil {
		t.Fatalf("HasVoted failed: %v", err)
	}
	if !voted {
		t.Error("expected HasVoted=true after Cast")
	}
}

func TestStore_Cast_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	aid := primitive.NewObjectID()
	uid := primitive.NewObjectID()
	gid := primitive.NewObjectID()

	if err := store.Cast(ctx, aid, uid, gid); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	err := store.Cast(ctx, aid, uid, gid)
	if !errors.Is(err, votestore.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	n, err := store.CountFor(ctx, aid)
	if err != nil {
		t.Fatalf("CountFor failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count: got %d, want 1", n)
	}
}

func TestStore_Withdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	aid := primitive.NewObjectID()
	uid := primitive.NewObjectID()
	gid := primitive.NewObjectID()

	if err := store.Cast(ctx, aid, uid, gid); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if err := store.Withdraw(ctx, aid, uid); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	voted, _ := store.HasVoted(ctx, aid, uid)
	if voted {
		t.Error("vote should be gone after Withdraw")
	}

	// Withdrawing an absent vote is a no-op.
	if err := store.Withdraw(ctx, aid, uid); err != nil {
		t.Errorf("second Withdraw: %v", err)
	}
}

func TestStore_CountsForAnnouncements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()
	unvoted := primitive.NewObjectID()

	store.Cast(ctx, a1, primitive.NewObjectID(), gid)
	store.Cast(ctx, a1, primitive.NewObjectID(), gid)
	store.Cast(ctx, a2, primitive.NewObjectID(), gid)

	counts, err := store.CountsForAnnouncements(ctx, []primitive.ObjectID{a1, a2, unvoted})
	if err != nil {
		t.Fatalf("CountsForAnnouncements failed: %v", err)
	}
	if counts[a1] != 2 || counts[a2] != 1 {
		t.Errorf("counts: got %v", counts)
	}
	if _, present := counts[unvoted]; present {
		t.Error("announcements without votes are simply absent from the map")
	}
}

func TestStore_VotedBy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	uid := primitive.NewObjectID()
	mine := primitive.NewObjectID()
	notMine := primitive.NewObjectID()

	store.Cast(ctx, mine, uid, gid)
	store.Cast(ctx, notMine, primitive.NewObjectID(), gid)

	voted, err := store.VotedBy(ctx, uid, []primitive.ObjectID{mine, notMine})
	if err != nil {
		t.Fatalf("VotedBy failed: %v", err)
	}
	if !voted[mine] {
		t.Error("expected my vote to be reported")
	}
	if voted[notMine] {
		t.Error("someone else's vote must not be attributed to me")
	}
}

func TestStore_GroupTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	other := primitive.NewObjectID()
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()

	store.Cast(ctx, a1, primitive.NewObjectID(), gid)
	store.Cast(ctx, a1, primitive.NewObjectID(), gid)
	store.Cast(ctx, a2, primitive.NewObjectID(), gid)
	store.Cast(ctx, primitive.NewObjectID(), primitive.NewObjectID(), other)

	totals, err := store.GroupTotals(ctx, gid)
	if err != nil {
		t.Fatalf("GroupTotals failed: %v", err)
	}
	if len(totals) != 2 {
		t.Errorf("got %d announcements, want 2", len(totals))
	}
	if totals[a1] != 2 || totals[a2] != 1 {
		t.Errorf("totals: got %v", totals)
	}
}

func TestStore_AllTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	a1 := primitive.NewObjectID()
	store.Cast(ctx, a1, primitive.NewObjectID(), gid)
	store.Cast(ctx, a1, primitive.NewObjectID(), gid)

	totals, err := store.AllTotals(ctx)
	if err != nil {
		t.Fatalf("AllTotals failed: %v", err)
	}
	if totals[a1] != 2 {
		t.Errorf("AllTotals[a1]: got %d, want 2", totals[a1])
	}
}

func TestStore_DeleteByAnnouncement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	aid := primitive.NewObjectID()
	keep := primitive.NewObjectID()
	store.Cast(ctx, aid, primitive.NewObjectID(), gid)
	store.Cast(ctx, aid, primitive.NewObjectID(), gid)
	store.Cast(ctx, keep, primitive.NewObjectID(), gid)

	n, err := store.DeleteByAnnouncement(ctx, aid)
	if err != nil {
		t.Fatalf("DeleteByAnnouncement failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted count: got %d, want 2", n)
	}
	stay, _ := store.CountFor(ctx, keep)
	if stay != 1 {
		t.Error("other announcement's votes must survive")
	}
}

func TestStore_DeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	other := primitive.NewObjectID()
	store.Cast(ctx, primitive.NewObjectID(), primitive.NewObjectID(), gid)
	store.Cast(ctx, primitive.NewObjectID(), primitive.NewObjectID(), gid)
	keepAid := primitive.NewObjectID()
	store.Cast(ctx, keepAid, primitive.NewObjectID(), other)

	n, err := store.DeleteByGroup(ctx, gid)
	if err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted count: got %d, want 2", n)
	}
	stay, _ := store.CountFor(ctx, keepAid)
	if stay != 1 {
		t.Error("other group's votes must survive")
	}
}
