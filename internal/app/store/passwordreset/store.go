// Package passwordreset manages single-use password reset tokens. A user can
// hold at most one outstanding token; a second request before the first
// expires is rejected rather than silently rotated.
package passwordreset

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenLength is the raw token size in bytes (32 bytes = 64 hex chars).
	TokenLength = 32
	// DefaultExpiry is how long a reset token stays valid.
	DefaultExpiry = time.Hour
	// BcryptCost for hashing tokens.
	BcryptCost = 10
)

var (
	// ErrNotFound is returned when no pending reset exists or it has expired.
	ErrNotFound = errors.New("reset token not found or expired")
	// ErrInvalidToken is returned when the token does not match.
	ErrInvalidToken = errors.New("invalid reset token")
	// ErrAlreadyRequested is returned when a token is still outstanding for the user.
	ErrAlreadyRequested = errors.New("a reset token has already been issued")
)

// ResetToken is one pending password reset. Only the bcrypt hash of the
// token is stored.
type ResetToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	TokenHash string             `bson:"token_hash"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Store manages password reset tokens.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store with the given expiry. Non-positive expiry falls back
// to DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("password_resets"), expiry: expiry}
}

// Expiry returns how long issued tokens stay valid.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// EnsureIndexes creates the TTL index for auto-cleanup and the user lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_pwreset_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_pwreset_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a reset token for the user and returns the plain token for
// the email link. Returns ErrAlreadyRequested while an unexpired token is
// outstanding.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID) (string, error) {
	now := time.Now()
	err := s.c.FindOne(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": now},
	}).Err()
	if err == nil {
		return "", ErrAlreadyRequested
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	token := generateToken()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}

	// Expired leftovers are invisible to the check above but may still be
	// awaiting TTL cleanup.
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", err
	}

	t := ResetToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		TokenHash: string(hash),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return "", fmt.Errorf("insert reset token: %w", err)
	}
	return token, nil
}

// VerifyToken checks a plain token against the user's pending reset. The
// record is kept; callers delete it with DeleteByUser once the password has
// actually been changed.
func (s *Store) VerifyToken(ctx context.Context, userID primitive.ObjectID, token string) error {
	var t ResetToken
	err := s.c.FindOne(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// DeleteByUser removes all reset tokens for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// generateToken returns a random hex token for reset links.
// Panics if the system's cryptographic random number generator fails.
func generateToken() string {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
