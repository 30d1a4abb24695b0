package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentiment labels a review can carry. TagNeutral doubles as the fallback
// when the classification call fails.
const (
	TagPositive = "Positive"
	TagNegative = "Negative"
	TagMixed    = "Mixed"
	TagNeutral  = "Neutral"
)

// Review is one user's take on one movie. A unique (owner, parent_movie)
// index holds the one-review-per-user invariant.
type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       primitive.ObjectID `bson:"owner"`
	ParentMovie primitive.ObjectID `bson:"parent_movie"`
	Rating      float64            `bson:"rating"`
	Content     string             `bson:"content,omitempty"`
	Upvotes     int64              `bson:"upvotes"`
	Downvotes   int64              `bson:"downvotes"`
	ReviewTag   string             `bson:"review_tag"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// VoteRecord marks that a user has voted on a review, in either direction.
// A unique (voted_by, voted_on) index makes a second vote a duplicate-key
// error rather than a lost-update race.
type VoteRecord struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	VotedBy primitive.ObjectID `bson:"voted_by"`
	VotedOn primitive.ObjectID `bson:"voted_on"`

	CreatedAt time.Time `bson:"created_at"`
}
