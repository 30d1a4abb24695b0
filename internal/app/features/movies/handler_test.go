package movies_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/popcornpal/popcornpal/internal/app/features/movies"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/app/system/media"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"github.com/popcornpal/popcornpal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeMovieStore struct {
	movies  map[primitive.ObjectID]*models.Movie
	updated *moviestore.Update
	deleted []primitive.ObjectID
}

func newFakeMovieStore() *fakeMovieStore {
	return &fakeMovieStore{movies: map[primitive.ObjectID]*models.Movie{}}
}

func (f *fakeMovieStore) add(m models.Movie) *models.Movie {
	if m.ID == primitive.NilObjectID {
		m.ID = primitive.NewObjectID()
	}
	f.movies[m.ID] = &m
	return &m
}

func (f *fakeMovieStore) Create(ctx context.Context, m models.Movie) (models.Movie, error) {
	m.ID = primitive.NewObjectID()
	f.movies[m.ID] = &m
	return m, nil
}

func (f *fakeMovieStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	if m, ok := f.movies[id]; ok {
		return m, nil
	}
	return nil, moviestore.ErrNotFound
}

func (f *fakeMovieStore) Update(ctx context.Context, id primitive.ObjectID, upd moviestore.Update) error {
	if _, ok := f.movies[id]; !ok {
		return moviestore.ErrNotFound
	}
	f.updated = &upd
	return nil
}

func (f *fakeMovieStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.deleted = append(f.deleted, id)
	delete(f.movies, id)
	return nil
}

func (f *fakeMovieStore) All(ctx context.Context, page, limit int64) ([]models.Movie, error) {
	out := []models.Movie{}
	for _, m := range f.movies {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMovieStore) LatestUploads(ctx context.Context) ([]moviestore.RatedMovie, error) {
	return nil, nil
}

func (f *fakeMovieStore) TopRatedByType(ctx context.Context, movieType string) ([]models.Movie, error) {
	return nil, nil
}

func (f *fakeMovieStore) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]moviestore.TitleRef, error) {
	out := []moviestore.TitleRef{}
	for _, id := range ids {
		if m, ok := f.movies[id]; ok {
			out = append(out, moviestore.TitleRef{ID: id, Title: m.Title})
		}
	}
	return out, nil
}

type fakeReviewReads struct{}

func (fakeReviewReads) AverageRating(ctx context.Context, movieID primitive.ObjectID) (*reviewstore.RatingAggregate, error) {
	return nil, nil
}

func (fakeReviewReads) IDsByMovie(ctx context.Context, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return nil, nil
}

func (fakeReviewReads) DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) error {
	return nil
}

type fakeVotePurge struct{}

func (fakeVotePurge) DeleteByReviews(ctx context.Context, reviewIDs []primitive.ObjectID) error {
	return nil
}

type fakeLikes struct {
	err error
}

func (f *fakeLikes) AddLikedMovie(ctx context.Context, userID, movieID primitive.ObjectID) error {
	return f.err
}

// fakeMedia records uploads and destroys; destroyErr fails every Destroy.
type fakeMedia struct {
	uploads    int
	destroyed  []string
	destroyErr error
}

func (f *fakeMedia) UploadPoster(ctx context.Context, r io.Reader) (media.Asset, error) {
	f.uploads++
	return media.Asset{
		URL:      "https://cdn.example/image/upload/new.jpg",
		PublicID: "posters/new",
	}, nil
}

func (f *fakeMedia) UploadTrailer(ctx context.Context, r io.Reader) (media.Asset, error) {
	f.uploads++
	return media.Asset{
		URL:      "https://cdn.example/video/upload/new.mp4",
		PublicID: "trailers/new",
	}, nil
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID, kind string) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func passthroughTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newHandler(store *fakeMovieStore, m *fakeMedia, likes *fakeLikes) *movies.Handler {
	return movies.NewHandler(store, fakeReviewReads{}, fakeVotePurge{}, likes, m, passthroughTxn, zap.NewNop())
}

func moviePoster() *models.MediaAsset {
	return &models.MediaAsset{URL: "https://cdn.example/image/upload/old.jpg", PublicID: "posters/old"}
}

func TestHandleDeleteMovie_AbortsWhenReleaseUnconfirmed(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Doomed", Poster: moviePoster()})
	mediaStore := &fakeMedia{destroyErr: media.ErrNotConfirmed}
	h := newHandler(store, mediaStore, &fakeLikes{})

	req := httptest.NewRequest(http.MethodDelete, "/movie/"+m.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "movieID", m.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDeleteMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusBadRequest)
	if len(store.deleted) != 0 {
		t.Error("movie must not be deleted when the remote release is unconfirmed")
	}
}

func TestHandleDeleteMovie_MissingTrailer(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Incomplete", Poster: moviePoster()})
	h := newHandler(store, &fakeMedia{}, &fakeLikes{})

	req := httptest.NewRequest(http.MethodDelete, "/movie/"+m.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "movieID", m.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDeleteMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusBadRequest)
	if len(store.deleted) != 0 {
		t.Error("movie must not be deleted without a trailer asset to release")
	}
}

func TestHandleDeleteMovie_Success(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{
		Title:   "Gone",
		Poster:  moviePoster(),
		Trailer: &models.MediaAsset{URL: "https://cdn.example/video/upload/t.mp4", PublicID: "trailers/t"},
	})
	mediaStore := &fakeMedia{}
	h := newHandler(store, mediaStore, &fakeLikes{})

	req := httptest.NewRequest(http.MethodDelete, "/movie/"+m.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "movieID", m.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDeleteMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)
	if len(mediaStore.destroyed) != 2 {
		t.Errorf("expected poster and trailer released, got %v", mediaStore.destroyed)
	}
	if len(store.deleted) != 1 {
		t.Error("expected the movie document deleted")
	}
}

func TestHandleUpdateMovie_ReplacesPoster(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Refreshed", Poster: moviePoster()})
	mediaStore := &fakeMedia{}
	h := newHandler(store, mediaStore, &fakeLikes{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":       "Refreshed",
		"storyline":   "Updated storyline.",
		"director":    "Someone",
		"releaseDate": time.Now().Format("2006-01-02"),
		"type":        models.TypeMovie,
		"language":    "English",
		"genres":      `["Action"]`,
		"tags":        `["classic"]`,
		"cast":        `[{"artistName":"A","roleAs":"B","leadActor":true}]`,
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	fw, _ := mw.CreateFormFile("poster", "poster.jpg")
	_, _ = fw.Write([]byte("fake image bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPatch, "/movie/update-movie/"+m.ID.Hex(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithChiURLParam(req, "movieID", m.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdateMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)
	if len(mediaStore.destroyed) != 1 || mediaStore.destroyed[0] != "posters/old" {
		t.Errorf("expected old poster released, got %v", mediaStore.destroyed)
	}
	if store.updated == nil || store.updated.Poster == nil || store.updated.Poster.PublicID != "posters/new" {
		t.Errorf("expected the new poster persisted, got %+v", store.updated)
	}
}

func TestHandleUpdateMovie_OldPosterReleaseUnconfirmed(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Stuck", Poster: moviePoster()})
	mediaStore := &fakeMedia{destroyErr: media.ErrNotConfirmed}
	h := newHandler(store, mediaStore, &fakeLikes{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Stuck")
	_ = mw.WriteField("storyline", "Still here.")
	_ = mw.WriteField("director", "Someone")
	_ = mw.WriteField("releaseDate", time.Now().Format("2006-01-02"))
	_ = mw.WriteField("type", models.TypeMovie)
	_ = mw.WriteField("language", "English")
	_ = mw.WriteField("tags", `["classic"]`)
	fw, _ := mw.CreateFormFile("poster", "poster.jpg")
	_, _ = fw.Write([]byte("fake image bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPatch, "/movie/update-movie/"+m.ID.Hex(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithChiURLParam(req, "movieID", m.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdateMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusBadRequest)
	if store.updated != nil {
		t.Error("movie must not be updated when the old poster release is unconfirmed")
	}
}

func TestHandleUpdateMovie_MissingPoster(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Stale", Poster: moviePoster()})
	mediaStore := &fakeMedia{}
	h := newHandler(store, mediaStore, &fakeLikes{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Stale")
	_ = mw.WriteField("storyline", "Still the same.")
	_ = mw.WriteField("director", "Someone")
	_ = mw.WriteField("releaseDate", time.Now().Format("2006-01-02"))
	_ = mw.WriteField("type", models.TypeMovie)
	_ = mw.WriteField("language", "English")
	_ = mw.WriteField("tags", `["classic"]`)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPatch, "/movie/update-movie/"+m.ID.Hex(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithChiURLParam(req, "movieID", m.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdateMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusBadRequest)
	if store.updated != nil {
		t.Error("movie must not be updated without a new poster")
	}
}

func TestHandleMovieNames_DuplicateIDs(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Once"})
	h := newHandler(store, &fakeMedia{}, &fakeLikes{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/movie/get-movie-names-list", map[string]any{
		"movieIds": []string{m.ID.Hex(), m.ID.Hex()},
	})
	rec := httptest.NewRecorder()
	h.HandleMovieNames(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)
	var body struct {
		Movies []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"movies"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Movies) != 1 {
		t.Errorf("expected the duplicate id collapsed to 1 title, got %d", len(body.Movies))
	}
}

func TestHandleMovieNames_UnknownID(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "One"})
	h := newHandler(store, &fakeMedia{}, &fakeLikes{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/movie/get-movie-names-list", map[string]any{
		"movieIds": []string{m.ID.Hex(), primitive.NewObjectID().Hex()},
	})
	rec := httptest.NewRecorder()
	h.HandleMovieNames(rec, req)

	testutil.RequireStatus(t, rec, http.StatusNotFound)
}

func TestHandleLikeMovie_Conflict(t *testing.T) {
	store := newFakeMovieStore()
	m := store.add(models.Movie{Title: "Liked"})
	h := newHandler(store, &fakeMedia{}, &fakeLikes{err: userstore.ErrAlreadyLiked})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/movie/like-movie", map[string]string{
		"movieId": m.ID.Hex(),
	})
	req = testutil.WithUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: models.RoleUser})
	rec := httptest.NewRecorder()
	h.HandleLikeMovie(rec, req)

	testutil.RequireStatus(t, rec, http.StatusConflict)
}

func TestHandleMovieNames(t *testing.T) {
	store := newFakeMovieStore()
	m1 := store.add(models.Movie{Title: "One"})
	m2 := store.add(models.Movie{Title: "Two"})
	h := newHandler(store, &fakeMedia{}, &fakeLikes{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/movie/get-movie-names-list", map[string]any{
		"movieIds": []string{m1.ID.Hex(), m2.ID.Hex()},
	})
	rec := httptest.NewRecorder()
	h.HandleMovieNames(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)
	var body struct {
		Movies []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"movies"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Movies) != 2 {
		t.Errorf("expected 2 titles, got %d", len(body.Movies))
	}
}
