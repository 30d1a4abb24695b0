package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Catalog entry types.
const (
	TypeMovie       = "Movie"
	TypeWebSeries   = "Web Series"
	TypeDocumentary = "Documentary"
)

// MediaAsset is a remote object held by the media store. URL and PublicID
// always travel together; the PublicID is what releases the remote object.
type MediaAsset struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"public_id"`

	// Responsive holds alternate-resolution rendition URLs, widest first.
	// Only posters carry these.
	Responsive []string `bson:"responsive,omitempty" json:"responsive,omitempty"`
}

// CastMember is one credited artist on a movie.
type CastMember struct {
	ArtistName string `bson:"artist_name" json:"artistName"`
	RoleAs     string `bson:"role_as" json:"roleAs"`
	LeadActor  bool   `bson:"lead_actor" json:"leadActor"`
}

// Movie is a catalog record. Reviews are referenced, not embedded; the
// reviews array and the Review.ParentMovie backlink are kept in step by the
// review store.
type Movie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	TitleCI     string             `bson:"title_ci"`
	Storyline   string             `bson:"storyline,omitempty"`
	Director    string             `bson:"director,omitempty"`
	ReleaseDate time.Time          `bson:"release_date,omitempty"`
	Type        string             `bson:"type"`
	Genres      []string           `bson:"genres,omitempty"`
	Tags        []string           `bson:"tags,omitempty"`
	Cast        []CastMember       `bson:"cast,omitempty"`
	Poster      *MediaAsset        `bson:"poster,omitempty"`
	Trailer     *MediaAsset        `bson:"trailer,omitempty"`
	Language    string             `bson:"language"`

	Reviews []primitive.ObjectID `bson:"reviews,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
