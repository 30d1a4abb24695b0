package moviestore

import (
	"context"
	"errors"
	"time"

	"github.com/popcornpal/popcornpal/internal/app/system/normalize"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// LatestUploadsLimit caps the home page carousel.
	LatestUploadsLimit = 5
	// TopRatedLimit caps the per-type top rated list.
	TopRatedLimit = 10
	// DefaultPageSize is used when the caller does not supply a limit.
	DefaultPageSize = 10
)

// ErrNotFound is returned when the movie does not exist.
var ErrNotFound = errors.New("movie not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("movies")}
}

// EnsureIndexes creates the lookup indexes used by the catalog queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_movies_type"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("idx_movies_title_ci"),
		},
		{
			Keys:    bson.D{{Key: "reviews", Value: 1}},
			Options: options.Index().SetName("idx_movies_reviews"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new movie after normalizing the title.
func (s *Store) Create(ctx context.Context, m models.Movie) (models.Movie, error) {
	m.ID = primitive.NewObjectID()
	m.Title = normalize.Title(m.Title)
	m.TitleCI = normalize.TitleFold(m.Title)
	if m.Reviews == nil {
		m.Reviews = []primitive.ObjectID{}
	}

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Movie{}, err
	}
	return m, nil
}

// GetByID loads a movie by ObjectID. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	var m models.Movie
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update holds the replaceable catalog fields of a movie. Media assets are
// handled separately so a metadata update never clobbers an upload.
type Update struct {
	Title       string
	Storyline   string
	Director    string
	ReleaseDate time.Time
	Type        string
	Genres      []string
	Tags        []string
	Cast        []models.CastMember
	Language    string
	Poster      *models.MediaAsset // nil leaves the stored poster untouched
}

// Update rewrites the catalog fields of a movie.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	title := normalize.Title(upd.Title)
	set := bson.M{
		"title":        title,
		"title_ci":     normalize.TitleFold(title),
		"storyline":    upd.Storyline,
		"director":     upd.Director,
		"release_date": upd.ReleaseDate,
		"type":         upd.Type,
		"genres":       upd.Genres,
		"tags":         upd.Tags,
		"cast":         upd.Cast,
		"language":     upd.Language,
		"updated_at":   time.Now(),
	}
	if upd.Poster != nil {
		set["poster"] = upd.Poster
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a movie document.
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

// All returns one page of movies, newest first. page is 1-based.
func (s *Store) All(ctx context.Context, page, limit int64) ([]models.Movie, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	movies := []models.Movie{}
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// RatedMovie is a movie joined with its review average. AverageRating is nil
// when the movie has no reviews yet.
type RatedMovie struct {
	Movie         models.Movie `bson:",inline"`
	AverageRating *float64     `bson:"average_rating"`
}

// LatestUploads returns the top movies by average review rating. Movies
// without reviews carry a null average, which Mongo's descending sort places
// last; _id breaks ties so the order is stable.
func (s *Store) LatestUploads(ctx context.Context) ([]RatedMovie, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "reviews",
			"localField":   "reviews",
			"foreignField": "_id",
			"as":           "review_docs",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"average_rating": bson.M{"$avg": "$review_docs.rating"},
		}}},
		{{Key: "$project", Value: bson.M{"review_docs": 0}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "average_rating", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		{{Key: "$limit", Value: LatestUploadsLimit}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []RatedMovie{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopRatedByType returns the most reviewed movies of one type, busiest
// first.
func (s *Store) TopRatedByType(ctx context.Context, movieType string) ([]models.Movie, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"type": movieType}}},
		{{Key: "$addFields", Value: bson.M{
			"review_count": bson.M{"$size": "$reviews"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "review_count", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		{{Key: "$limit", Value: TopRatedLimit}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	movies := []models.Movie{}
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// TitleRef pairs a movie id with its display title.
type TitleRef struct {
	ID    primitive.ObjectID `bson:"_id"`
	Title string             `bson:"title"`
}

// TitlesByIDs resolves movie ids to titles in one query. Unknown ids are
// silently absent from the result.
func (s *Store) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]TitleRef, error) {
	opts := options.Find().SetProjection(bson.M{"title": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	refs := []TitleRef{}
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// PushReview appends a review id to the movie's review list.
func (s *Store) PushReview(ctx context.Context, movieID, reviewID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": movieID},
		bson.M{"$addToSet": bson.M{"reviews": reviewID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullReview removes a review id from the movie's review list.
func (s *Store) PullReview(ctx context.Context, reviewID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"reviews": reviewID},
		bson.M{"$pull": bson.M{"reviews": reviewID}})
	return err
}
