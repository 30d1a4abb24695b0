package emailverify

import (
	"context"
	"crypto/rand"
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
	// CodeLength is the length of the verification OTP (6 digits).
	CodeLength = 6
	// DefaultExpiry is how long a verification OTP is valid.
	DefaultExpiry = 10 * time.Minute
	// BcryptCost for hashing OTPs.
	BcryptCost = 10
)

var (
	// ErrNotFound is returned when no pending verification exists or it has expired.
	ErrNotFound = errors.New("verification not found or expired")
	// ErrInvalidCode is returned when the OTP does not match.
	ErrInvalidCode = errors.New("invalid verification code")
)

// Verification is one pending email verification. Only the bcrypt hash of
// the OTP is stored; the plain code exists solely in the email.
type Verification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CodeHash  string             `bson:"code_hash"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Store manages email verification OTPs.
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
	return &Store{c: db.Collection("email_verifications"), expiry: expiry}
}

// Expiry returns how long issued codes stay valid.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// EnsureIndexes creates the TTL index for auto-cleanup and the user lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_emailverify_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_emailverify_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a fresh OTP for the user, replacing any outstanding one, and
// returns the plain code for the email.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID) (string, error) {
	code := generateCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	now := time.Now()
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", err
	}
	v := Verification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return "", fmt.Errorf("insert verification: %w", err)
	}
	return code, nil
}

// VerifyCode checks the OTP against the pending verification for the user.
// The record is deleted on success (single use).
func (s *Store) VerifyCode(ctx context.Context, userID primitive.ObjectID, code string) error {
	var v Verification
	err := s.c.FindOne(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		return ErrInvalidCode
	}

	_, _ = s.c.DeleteOne(ctx, bson.M{"_id": v.ID})
	return nil
}

// HasPending reports whether an unexpired verification exists for the user.
func (s *Store) HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// DeleteByUser removes all verification records for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// generateCode returns a random 6-digit numeric OTP.
// Panics if the system's cryptographic random number generator fails.
func generateCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	code := (n % 900000) + 100000
	return fmt.Sprintf("%06d", code)
}
