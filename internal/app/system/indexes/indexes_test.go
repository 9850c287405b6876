package indexes_test

import (
	"testing"

	"github.com/corkboardhq/corkboard/internal/app/system/indexes"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func indexNamesFor(t *testing.T, collName string) map[string]bool {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection(collName).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesUserIndexes(t *testing.T) {
	names := indexNamesFor(t, "users")
	for _, want := range []string{
		"uniq_users_emailci",
		"idx_users_status_fullnameci__id",
	} {
		if !names[want] {
			t.Errorf("expected index %q to exist on users collection", want)
		}
	}
}

func TestEnsureAll_CreatesGroupIndexes(t *testing.T) {
	names := indexNamesFor(t, "groups")
	for _, want := range []string{
		"uniq_groups_joincode",
		"idx_groups_nameci__id",
	} {
		if !names[want] {
			t.Errorf("expected index %q to exist on groups collection", want)
		}
	}
}

func TestEnsureAll_CreatesGroupMembershipIndexes(t *testing.T) {
	names := indexNamesFor(t, "group_memberships")
	for _, want := range []string{
		"uniq_gm_group_user",
		"idx_gm_group_role_user",
		"idx_gm_user_group",
	} {
		if !names[want] {
			t.Errorf("expected index %q to exist on group_memberships collection", want)
		}
	}
}

func TestEnsureAll_CreatesAnnouncementIndexes(t *testing.T) {
	names := indexNamesFor(t, "announcements")
	for _, want := range []string{
		"idx_ann_group_pinned_created__id",
		"idx_ann_group_category_created",
		"idx_ann_group_tags_created",
		"idx_ann_author_created",
	} {
		if !names[want] {
			t.Errorf("expected index %q to exist on announcements collection", want)
		}
	}
}

func TestEnsureAll_CreatesVoteIndexes(t *testing.T) {
	names := indexNamesFor(t, "votes")
	for _, want := range []string{
		"uniq_votes_ann_user",
		"idx_votes_group",
	} {
		if !names[want] {
			t.Errorf("expected index %q to exist on votes collection", want)
		}
	}
}

func TestEnsureAll_CreatesSystemRoleIndexes(t *testing.T) {
	names := indexNamesFor(t, "system_roles")
	if !names["uniq_sysroles_user_role"] {
		t.Error("expected index uniq_sysroles_user_role to exist on system_roles collection")
	}
}

func TestEnsureAll_CreatesOAuthStateIndexes(t *testing.T) {
	names := indexNamesFor(t, "oauth_states")
	for _, want := range []string{
		"uniq_oauth_state",
		"idx_oauth_expires",
	} {
		if !names[want] {
			t.Errorf("expected index %q to exist on oauth_states collection", want)
		}
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Run EnsureAll to create indexes
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Insert a group with a join code
	_, err = db.Collection("groups").InsertOne(ctx, bson.M{"join_code": "ABCD2345", "name": "First"})
	if err != nil {
		t.Fatalf("Insert group failed: %v", err)
	}

	// A second group with the same join code should fail
	_, err = db.Collection("groups").InsertOne(ctx, bson.M{"join_code": "ABCD2345", "name": "Second"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on groups.join_code")
	}
}
