package reviewstore_test

import (
	"errors"
	"testing"

	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"github.com/popcornpal/popcornpal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	owner := fixtures.CreateUser(ctx, "onereviewer")
	movie := fixtures.CreateMovie(ctx, "Once", models.TypeMovie)

	r := models.Review{Owner: owner.ID, ParentMovie: movie.ID, Rating: 7, Content: "Nice.", ReviewTag: models.TagPositive}
	if _, err := store.Create(ctx, r); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, r); !errors.Is(err, reviewstore.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_UpdateOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "owner")
	other := fixtures.CreateUser(ctx, "intruder")
	movie := fixtures.CreateMovie(ctx, "Owned", models.TypeMovie)
	r := fixtures.CreateReview(ctx, owner.ID, movie.ID, 5)

	// A non-owner must not be able to touch the review.
	err := store.UpdateOwned(ctx, r.ID, other.ID, 1, "hijacked", models.TagNegative)
	if !errors.Is(err, reviewstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}

	if err := store.UpdateOwned(ctx, r.ID, owner.ID, 9, "revised", models.TagPositive); err != nil {
		t.Fatalf("UpdateOwned failed: %v", err)
	}
	got, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Rating != 9 || got.Content != "revised" || got.ReviewTag != models.TagPositive {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestStore_ByMovie_JoinsOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "visible")
	movie := fixtures.CreateMovie(ctx, "Joined", models.TypeMovie)
	fixtures.CreateReview(ctx, owner.ID, movie.ID, 6)

	reviews, err := store.ByMovie(ctx, movie.ID)
	if err != nil {
		t.Fatalf("ByMovie failed: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}
	if reviews[0].OwnerUsername != owner.Username {
		t.Errorf("owner username = %q, want %q", reviews[0].OwnerUsername, owner.Username)
	}
}

func TestStore_AverageRating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "avga")
	b := fixtures.CreateUser(ctx, "avgb")
	movie := fixtures.CreateMovie(ctx, "Averaged", models.TypeMovie)
	fixtures.CreateReview(ctx, a.ID, movie.ID, 7)
	fixtures.CreateReview(ctx, b.ID, movie.ID, 8)

	agg, err := store.AverageRating(ctx, movie.ID)
	if err != nil {
		t.Fatalf("AverageRating failed: %v", err)
	}
	if agg == nil {
		t.Fatal("expected an aggregate")
	}
	if agg.RatingAverage != "7.5" {
		t.Errorf("average = %q, want %q", agg.RatingAverage, "7.5")
	}
	if agg.ReviewsCount != 2 {
		t.Errorf("count = %d, want 2", agg.ReviewsCount)
	}
}

func TestStore_AverageRating_NoReviews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agg, err := store.AverageRating(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("AverageRating failed: %v", err)
	}
	if agg != nil {
		t.Errorf("expected nil aggregate for unreviewed movie, got %+v", agg)
	}
}

func TestStore_IncrementVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "votedon")
	movie := fixtures.CreateMovie(ctx, "Voted", models.TypeMovie)
	r := fixtures.CreateReview(ctx, owner.ID, movie.ID, 5)

	if err := store.IncrementVote(ctx, r.ID, "upvotes"); err != nil {
		t.Fatalf("IncrementVote failed: %v", err)
	}
	if err := store.IncrementVote(ctx, r.ID, "downvotes"); err != nil {
		t.Fatalf("IncrementVote failed: %v", err)
	}
	if err := store.IncrementVote(ctx, r.ID, "rating"); err == nil {
		t.Error("expected an error for an invalid vote field")
	}

	got, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Upvotes != 1 || got.Downvotes != 1 {
		t.Errorf("counters = %d/%d, want 1/1", got.Upvotes, got.Downvotes)
	}
}

func TestStore_DeleteByMovie(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "gonea")
	b := fixtures.CreateUser(ctx, "goneb")
	movie := fixtures.CreateMovie(ctx, "Doomed", models.TypeMovie)
	fixtures.CreateReview(ctx, a.ID, movie.ID, 5)
	fixtures.CreateReview(ctx, b.ID, movie.ID, 6)

	ids, err := store.IDsByMovie(ctx, movie.ID)
	if err != nil {
		t.Fatalf("IDsByMovie failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 review ids, got %d", len(ids))
	}

	if err := store.DeleteByMovie(ctx, movie.ID); err != nil {
		t.Fatalf("DeleteByMovie failed: %v", err)
	}
	left, err := store.ByMovie(ctx, movie.ID)
	if err != nil {
		t.Fatalf("ByMovie failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected no reviews left, got %d", len(left))
	}
}
