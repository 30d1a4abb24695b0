// Package reviews implements review creation with AI sentiment tagging,
// owner-scoped editing, and up/down voting.
package reviews

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/system/gemini"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReviewStore is the slice of the review store the handlers need.
type ReviewStore interface {
	Create(ctx context.Context, r models.Review) (models.Review, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, rating float64, content, reviewTag string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ByMovie(ctx context.Context, movieID primitive.ObjectID) ([]reviewstore.MovieReview, error)
	IncrementVote(ctx context.Context, id primitive.ObjectID, field string) error
}

// MovieStore covers the movie reads and review-list bookkeeping.
type MovieStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	PushReview(ctx context.Context, movieID, reviewID primitive.ObjectID) error
	PullReview(ctx context.Context, reviewID primitive.ObjectID) error
}

// VoteStore records votes and purges them when reviews go away.
type VoteStore interface {
	Create(ctx context.Context, votedBy, votedOn primitive.ObjectID) (models.VoteRecord, error)
	DeleteByReviews(ctx context.Context, reviewIDs []primitive.ObjectID) error
}

// TxnRunner executes fn atomically when the deployment supports
// transactions, or plainly when it does not.
type TxnRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// sanitizer strips markup from review content before it hits the database.
var sanitizer = bluemonday.StrictPolicy()

// Handler holds the dependencies of the review endpoints.
type Handler struct {
	Reviews ReviewStore
	Movies  MovieStore
	Votes   VoteStore
	Tagger  gemini.Tagger
	Txn     TxnRunner
	Log     *zap.Logger
}

func NewHandler(reviews ReviewStore, movies MovieStore, votes VoteStore, tagger gemini.Tagger, txnRunner TxnRunner, logger *zap.Logger) *Handler {
	return &Handler{
		Reviews: reviews,
		Movies:  movies,
		Votes:   votes,
		Tagger:  tagger,
		Txn:     txnRunner,
		Log:     logger,
	}
}

// tagSentiment classifies the review text, falling back to Neutral when the
// model is unavailable or answers nonsense. A review is never blocked on
// the AI service.
func (h *Handler) tagSentiment(ctx context.Context, content string) string {
	if h.Tagger == nil {
		return models.TagNeutral
	}
	tag, err := h.Tagger.TagSentiment(ctx, content)
	if err != nil {
		h.Log.Warn("sentiment tagging failed, defaulting to neutral", zap.Error(err))
		return models.TagNeutral
	}
	return tag
}
