package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/popcornpal/popcornpal/internal/app/system/normalize"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDuplicateUsername is returned when attempting to create a user with a username that already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyLiked is returned when a user likes a movie twice.
	ErrAlreadyLiked = errors.New("movie already in liked list")
	errBadRole      = errors.New(`role must be "admin"|"user"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email and folded-username indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetName("uniq_users_username_ci").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new user after normalizing fields. New accounts always
// start unverified; the caller decides the role.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = normalize.UsernameFold(u.Username)
	u.Email = normalize.Email(u.Email)
	u.IsVerified = false
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	switch u.Role {
	case models.RoleAdmin, models.RoleUser:
	default:
		return models.User{}, errBadRole
	}
	if u.LikedMovies == nil {
		u.LikedMovies = []primitive.ObjectID{}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	// Pre-checks give field-specific errors; the unique indexes are the
	// backstop under concurrent registration.
	if err := s.c.FindOne(ctx, bson.M{"email": u.Email}).Err(); err == nil {
		return models.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, err
	}
	if err := s.c.FindOne(ctx, bson.M{"username_ci": u.UsernameCI}).Err(); err == nil {
		return models.User{}, ErrDuplicateUsername
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, err
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns ErrNotFound if absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetVerified flips the verified flag.
func (s *Store) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_verified": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLikedMovie appends a movie to the user's liked list exactly once.
// The filter excludes users who already hold the movie, so a matched-but-
// unmodified result cannot occur; a zero match means either the user is
// missing or the movie was already liked, disambiguated with a second read.
func (s *Store) AddLikedMovie(ctx context.Context, userID, movieID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "liked_movies": bson.M{"$ne": movieID}},
		bson.M{
			"$addToSet": bson.M{"liked_movies": movieID},
			"$set":      bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return ErrAlreadyLiked
}
