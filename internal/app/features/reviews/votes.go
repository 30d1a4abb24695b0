package reviews

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/store/votestore"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleUpvote handles POST /review/add-upvote/{movieId}/{reviewID}.
func (h *Handler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, "upvotes")
}

// HandleDownvote handles POST /review/add-downvote/{movieId}/{reviewID}.
func (h *Handler) HandleDownvote(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, "downvotes")
}

// handleVote records a vote and bumps the matching counter. The vote record
// insert and the counter increment commit together; the unique
// (voted_by, voted_on) index makes a second vote in either direction a
// conflict.
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request, field string) {
	voter, ok := sessionObjectID(w, r)
	if !ok {
		return
	}
	movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "movieId"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid movie id")
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	review, err := h.Reviews.GetByID(r.Context(), reviewID)
	if errors.Is(err, reviewstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Review not found")
		return
	}
	if err != nil {
		h.Log.Error("load review", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if review.ParentMovie != movieID {
		httpjson.Error(w, http.StatusNotFound, "Review not found")
		return
	}

	err = h.Txn(r.Context(), func(ctx context.Context) error {
		if _, err := h.Votes.Create(ctx, voter, reviewID); err != nil {
			return err
		}
		return h.Reviews.IncrementVote(ctx, reviewID, field)
	})
	if errors.Is(err, votestore.ErrAlreadyVoted) {
		httpjson.Error(w, http.StatusConflict, "You have already voted on this review!")
		return
	}
	if err != nil {
		h.Log.Error("record vote", zap.String("field", field), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Message(w, http.StatusOK, "Your vote has been counted!")
}
