// Package votestore records which user has voted on which review. The
// unique (voted_by, voted_on) index is the one-vote-per-review guarantee;
// the counters on the review document are only incremented after a vote
// record lands.
package votestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyVoted is returned when a user votes on the same review twice.
var ErrAlreadyVoted = errors.New("user has already voted on this review")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("votes")}
}

// EnsureIndexes creates the one-vote-per-user-per-review unique index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "voted_by", Value: 1},
				{Key: "voted_on", Value: 1},
			},
			Options: options.Index().SetName("uniq_votes_by_on").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "voted_on", Value: 1}},
			Options: options.Index().SetName("idx_votes_on"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create records one vote. Returns ErrAlreadyVoted when the user has voted
// on this review before, regardless of direction.
func (s *Store) Create(ctx context.Context, votedBy, votedOn primitive.ObjectID) (models.VoteRecord, error) {
	v := models.VoteRecord{
		ID:        primitive.NewObjectID(),
		VotedBy:   votedBy,
		VotedOn:   votedOn,
		CreatedAt: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.VoteRecord{}, ErrAlreadyVoted
		}
		return models.VoteRecord{}, err
	}
	return v, nil
}

// DeleteByReviews removes the vote records of the given reviews. Used when
// reviews are cascade-deleted with their movie.
func (s *Store) DeleteByReviews(ctx context.Context, reviewIDs []primitive.ObjectID) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	_, err := s.c.DeleteMany(ctx, bson.M{"voted_on": bson.M{"$in": reviewIDs}})
	return err
}
