package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures creates prerequisite documents for tests.
type Fixtures struct {
	t       *testing.T
	users   *userstore.Store
	movies  *moviestore.Store
	reviews *reviewstore.Store
	seq     int
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	return &Fixtures{
		t:       t,
		users:   userstore.New(db),
		movies:  moviestore.New(db),
		reviews: reviewstore.New(db),
	}
}

func (f *Fixtures) next() int {
	f.seq++
	return f.seq
}

// CreateUser inserts a verified regular user.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()
	u, err := f.users.Create(ctx, models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s%d@example.com", username, f.next()),
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixtu",
		Role:         models.RoleUser,
	})
	if err != nil {
		f.t.Fatalf("fixture CreateUser(%s): %v", username, err)
	}
	return u
}

// CreateAdmin inserts a verified admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	u, err := f.users.Create(ctx, models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s%d@example.com", username, f.next()),
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixtu",
		Role:         models.RoleAdmin,
	})
	if err != nil {
		f.t.Fatalf("fixture CreateAdmin(%s): %v", username, err)
	}
	return u
}

// CreateMovie inserts a minimal movie of the given type.
func (f *Fixtures) CreateMovie(ctx context.Context, title, movieType string) models.Movie {
	f.t.Helper()
	m, err := f.movies.Create(ctx, models.Movie{
		Title:       title,
		Storyline:   "A test storyline.",
		Director:    "Test Director",
		ReleaseDate: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Type:        movieType,
		Genres:      []string{"Action"},
		Language:    "English",
		Cast: []models.CastMember{
			{ArtistName: "Test Artist", RoleAs: "Lead", LeadActor: true},
		},
	})
	if err != nil {
		f.t.Fatalf("fixture CreateMovie(%s): %v", title, err)
	}
	return m
}

// CreateReview inserts a review and links it to the movie's review list.
func (f *Fixtures) CreateReview(ctx context.Context, owner, movieID primitive.ObjectID, rating float64) models.Review {
	f.t.Helper()
	r, err := f.reviews.Create(ctx, models.Review{
		Owner:       owner,
		ParentMovie: movieID,
		Rating:      rating,
		Content:     "A test review.",
		ReviewTag:   models.TagNeutral,
	})
	if err != nil {
		f.t.Fatalf("fixture CreateReview: %v", err)
	}
	if err := f.movies.PushReview(ctx, movieID, r.ID); err != nil {
		f.t.Fatalf("fixture PushReview: %v", err)
	}
	return r
}
