package passwordreset_test

import (
	"errors"
	"testing"
	"time"

	"github.com/popcornpal/popcornpal/internal/app/store/passwordreset"
	"github.com/popcornpal/popcornpal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndVerify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()

	token, err := store.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(token) != passwordreset.TokenLength*2 {
		t.Errorf("token length = %d, want %d hex chars", len(token), passwordreset.TokenLength*2)
	}

	if err := store.VerifyToken(ctx, userID, token); err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	// Verification does not consume the token; the reset flow deletes it
	// after the password is actually changed.
	if err := store.VerifyToken(ctx, userID, token); err != nil {
		t.Errorf("second VerifyToken failed: %v", err)
	}

	if err := store.DeleteByUser(ctx, userID); err != nil {
		t.Fatalf("DeleteByUser failed: %v", err)
	}
	if err := store.VerifyToken(ctx, userID, token); !errors.Is(err, passwordreset.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_SingleOutstandingToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if _, err := store.Create(ctx, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Create(ctx, userID); !errors.Is(err, passwordreset.ErrAlreadyRequested) {
		t.Errorf("expected ErrAlreadyRequested, got %v", err)
	}
}

func TestStore_VerifyWrongToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if _, err := store.Create(ctx, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.VerifyToken(ctx, userID, "deadbeef"); !errors.Is(err, passwordreset.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestStore_ExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := passwordreset.New(db, time.Millisecond)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	token, err := store.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if err := store.VerifyToken(ctx, userID, token); !errors.Is(err, passwordreset.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired token, got %v", err)
	}

	// An expired token no longer blocks a fresh request.
	if _, err := store.Create(ctx, userID); err != nil {
		t.Errorf("Create after expiry failed: %v", err)
	}
}
