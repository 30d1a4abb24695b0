// Package movies implements the admin catalog management endpoints and the
// public browsing endpoints.
package movies

import (
	"context"

	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/system/media"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MovieStore is the slice of the movie store the handlers need.
type MovieStore interface {
	Create(ctx context.Context, m models.Movie) (models.Movie, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	Update(ctx context.Context, id primitive.ObjectID, upd moviestore.Update) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	All(ctx context.Context, page, limit int64) ([]models.Movie, error)
	LatestUploads(ctx context.Context) ([]moviestore.RatedMovie, error)
	TopRatedByType(ctx context.Context, movieType string) ([]models.Movie, error)
	TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]moviestore.TitleRef, error)
}

// ReviewStore covers the review reads and cascade deletes the movie
// endpoints perform.
type ReviewStore interface {
	AverageRating(ctx context.Context, movieID primitive.ObjectID) (*reviewstore.RatingAggregate, error)
	IDsByMovie(ctx context.Context, movieID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) error
}

// VoteStore covers the vote cascade delete.
type VoteStore interface {
	DeleteByReviews(ctx context.Context, reviewIDs []primitive.ObjectID) error
}

// UserStore covers the like-movie bookkeeping.
type UserStore interface {
	AddLikedMovie(ctx context.Context, userID, movieID primitive.ObjectID) error
}

// TxnRunner executes fn atomically when the deployment supports
// transactions, or plainly when it does not.
type TxnRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Handler holds the dependencies of the movie endpoints.
type Handler struct {
	Movies  MovieStore
	Reviews ReviewStore
	Votes   VoteStore
	Users   UserStore
	Media   media.Store
	Txn     TxnRunner
	Log     *zap.Logger
}

func NewHandler(movies MovieStore, reviews ReviewStore, votes VoteStore, users UserStore, mediaStore media.Store, txnRunner TxnRunner, logger *zap.Logger) *Handler {
	return &Handler{
		Movies:  movies,
		Reviews: reviews,
		Votes:   votes,
		Users:   users,
		Media:   mediaStore,
		Txn:     txnRunner,
		Log:     logger,
	}
}
