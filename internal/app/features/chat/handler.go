// Package chat exposes the ScreenPal movie-guide chatbot. The model is
// primed with the live catalog on every request so answers track the
// current inventory.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/popcornpal/popcornpal/internal/app/system/gemini"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/timeouts"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.uber.org/zap"
)

// catalogLimit bounds how much of the catalog is rendered into the prompt.
const catalogLimit = 200

// fallbackAnswer is returned whenever the model cannot be reached; chat is
// best-effort and never surfaces a 5xx for a model failure.
const fallbackAnswer = "UhOh! Something went wrong here. Try again."

// MovieLister provides the catalog pages rendered into the prompt.
type MovieLister interface {
	All(ctx context.Context, page, limit int64) ([]models.Movie, error)
}

// Handler holds the dependencies of the chat endpoint.
type Handler struct {
	Chatter gemini.Chatter
	Movies  MovieLister
	Log     *zap.Logger
}

func NewHandler(chatter gemini.Chatter, movies MovieLister, logger *zap.Logger) *Handler {
	return &Handler{Chatter: chatter, Movies: movies, Log: logger}
}

// HandleChat handles POST /chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpjson.Error(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	catalog, err := h.renderCatalog(ctx)
	if err != nil {
		h.Log.Error("render catalog for chat", zap.Error(err))
		httpjson.Message(w, http.StatusOK, fallbackAnswer)
		return
	}

	answer, err := h.Chatter.Chat(ctx, catalog, req.Message)
	if err != nil {
		h.Log.Warn("chat model call failed", zap.Error(err))
		httpjson.Message(w, http.StatusOK, fallbackAnswer)
		return
	}

	httpjson.Message(w, http.StatusOK, answer)
}

// renderCatalog formats the current inventory the way the persona prompt
// expects it.
func (h *Handler) renderCatalog(ctx context.Context) (string, error) {
	movies, err := h.Movies.All(ctx, 1, catalogLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := range movies {
		m := &movies[i]
		fmt.Fprintf(&b, "%s\n\n", m.Title)
		fmt.Fprintf(&b, "Director: %s\n", m.Director)
		fmt.Fprintf(&b, "Release Date: %s\n", m.ReleaseDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "Type: %s\n", m.Type)
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(m.Genres, ", "))
		fmt.Fprintf(&b, "Language: %s\n", m.Language)
		if cast := mainCast(m.Cast); cast != "" {
			fmt.Fprintf(&b, "Main Cast: %s\n", cast)
		}
		fmt.Fprintf(&b, "Storyline: %s\n", m.Storyline)
	}
	return b.String(), nil
}

func mainCast(cast []models.CastMember) string {
	parts := make([]string, 0, len(cast))
	for _, c := range cast {
		if c.LeadActor {
			parts = append(parts, fmt.Sprintf("%s as %s", c.ArtistName, c.RoleAs))
		}
	}
	if len(parts) == 0 && len(cast) > 0 {
		parts = append(parts, fmt.Sprintf("%s as %s", cast[0].ArtistName, cast[0].RoleAs))
	}
	return strings.Join(parts, ", ")
}
