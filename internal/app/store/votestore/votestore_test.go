package votestore_test

import (
	"errors"
	"testing"

	"github.com/popcornpal/popcornpal/internal/app/store/votestore"
	"github.com/popcornpal/popcornpal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_OneVotePerReview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	voter := primitive.NewObjectID()
	review := primitive.NewObjectID()

	if _, err := store.Create(ctx, voter, review); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// A second vote from the same user on the same review must be
	// rejected, regardless of direction.
	if _, err := store.Create(ctx, voter, review); !errors.Is(err, votestore.ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}

	// Other users and other reviews are unaffected.
	if _, err := store.Create(ctx, primitive.NewObjectID(), review); err != nil {
		t.Errorf("different voter failed: %v", err)
	}
	if _, err := store.Create(ctx, voter, primitive.NewObjectID()); err != nil {
		t.Errorf("different review failed: %v", err)
	}
}

func TestStore_DeleteByReviews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	r1 := primitive.NewObjectID()
	r2 := primitive.NewObjectID()
	voter := primitive.NewObjectID()
	if _, err := store.Create(ctx, voter, r1); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, voter, r2); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.DeleteByReviews(ctx, []primitive.ObjectID{r1, r2}); err != nil {
		t.Fatalf("DeleteByReviews failed: %v", err)
	}

	// After the purge the voter can vote again.
	if _, err := store.Create(ctx, voter, r1); err != nil {
		t.Errorf("Create after purge failed: %v", err)
	}

	// Empty input is a no-op.
	if err := store.DeleteByReviews(ctx, nil); err != nil {
		t.Errorf("DeleteByReviews(nil) failed: %v", err)
	}
}
