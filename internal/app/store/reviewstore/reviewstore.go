package reviewstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicate is returned when a user reviews the same movie twice.
	ErrDuplicate = errors.New("user has already reviewed this movie")
	// ErrNotFound is returned when the review does not exist, or is not
	// owned by the requesting user for owner-scoped operations.
	ErrNotFound = errors.New("review not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

// EnsureIndexes creates the one-review-per-user-per-movie unique index and
// the parent movie lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "parent_movie", Value: 1},
			},
			Options: options.Index().SetName("uniq_reviews_owner_movie").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "parent_movie", Value: 1}},
			Options: options.Index().SetName("idx_reviews_parent_movie"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a review. The unique (owner, parent_movie) index rejects a
// second review from the same user.
func (s *Store) Create(ctx context.Context, r models.Review) (models.Review, error) {
	r.ID = primitive.NewObjectID()
	r.Upvotes = 0
	r.Downvotes = 0

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Review{}, ErrDuplicate
		}
		return models.Review{}, err
	}
	return r, nil
}

// GetByID loads a review by ObjectID. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// UpdateOwned rewrites the rating, content and sentiment tag of a review,
// but only when owner matches. A non-owner gets ErrNotFound, same as a
// missing review.
func (s *Store) UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, rating float64, content, reviewTag string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": bson.M{
			"rating":     rating,
			"content":    content,
			"review_tag": reviewTag,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a review document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MovieReview is a review joined with its owner's public identity.
type MovieReview struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Owner         primitive.ObjectID `bson:"owner" json:"ownerId"`
	OwnerUsername string             `bson:"owner_username" json:"owner"`
	Rating        float64            `bson:"rating" json:"rating"`
	Content       string             `bson:"content" json:"content"`
	Upvotes       int64              `bson:"upvotes" json:"upvotes"`
	Downvotes     int64              `bson:"downvotes" json:"downvotes"`
	ReviewTag     string             `bson:"review_tag" json:"reviewTag"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}

// ByMovie returns all reviews of a movie joined with owner usernames,
// newest first.
func (s *Store) ByMovie(ctx context.Context, movieID primitive.ObjectID) ([]MovieReview, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"parent_movie": movieID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner_doc",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"owner_username": bson.M{"$arrayElemAt": bson.A{"$owner_doc.username", 0}},
		}}},
		{{Key: "$project", Value: bson.M{"owner_doc": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	reviews := []MovieReview{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// RatingAggregate summarizes a movie's reviews. RatingAverage is formatted
// with one decimal place.
type RatingAggregate struct {
	RatingAverage string `json:"ratingAvg"`
	ReviewsCount  int64  `json:"reviewCount"`
}

// AverageRating computes the review average and count for a movie. Returns
// nil when the movie has no reviews.
func (s *Store) AverageRating(ctx context.Context, movieID primitive.ObjectID) (*RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"parent_movie": movieID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"rating_avg":    bson.M{"$avg": "$rating"},
			"reviews_count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		RatingAvg    float64 `bson:"rating_avg"`
		ReviewsCount int64   `bson:"reviews_count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &RatingAggregate{
		RatingAverage: fmt.Sprintf("%.1f", rows[0].RatingAvg),
		ReviewsCount:  rows[0].ReviewsCount,
	}, nil
}

// IncrementVote bumps one of the vote counters. field must be "upvotes" or
// "downvotes".
func (s *Store) IncrementVote(ctx context.Context, id primitive.ObjectID, field string) error {
	if field != "upvotes" && field != "downvotes" {
		return fmt.Errorf("invalid vote field %q", field)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IDsByMovie lists the review ids attached to a movie.
func (s *Store) IDsByMovie(ctx context.Context, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"parent_movie": movieID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// DeleteByMovie removes every review of a movie.
func (s *Store) DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"parent_movie": movieID})
	return err
}
