package movies

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/popcornpal/popcornpal/internal/domain/models"
)

// acceptedGenres is the catalog's genre whitelist.
var acceptedGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary",
	"Drama", "Family", "Fantasy", "Fiction", "Fight", "Film-Noir",
	"Game Show", "History", "Horror", "Music", "Musical", "Mystery", "News",
	"Old", "Reality TV", "Romance", "Sci-Fi", "Sport", "Superhero",
	"Thriller", "War", "Webseries", "Western",
}

var genreSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(acceptedGenres))
	for _, g := range acceptedGenres {
		m[g] = struct{}{}
	}
	return m
}()

// sanitizer strips markup from free-text fields before they hit the
// database.
var sanitizer = bluemonday.StrictPolicy()

// movieForm is the parsed multipart body of create-movie and update-movie.
// Genres, tags, cast and trailer arrive as JSON-encoded form fields.
type movieForm struct {
	Title       string
	Storyline   string
	Director    string
	ReleaseDate time.Time
	Type        string
	Genres      []string
	Tags        []string
	Cast        []models.CastMember
	Language    string
	Trailer     *models.MediaAsset
}

type trailerField struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// parseMovieForm reads the multipart form fields into a movieForm. Returns
// a user-facing message when a field is malformed.
func parseMovieForm(get func(string) string) (*movieForm, string) {
	f := &movieForm{
		Title:     strings.TrimSpace(get("title")),
		Storyline: sanitizer.Sanitize(strings.TrimSpace(get("storyline"))),
		Director:  strings.TrimSpace(get("director")),
		Type:      strings.TrimSpace(get("type")),
		Language:  strings.TrimSpace(get("language")),
	}

	if raw := get("releaseDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, "Invalid release date, expected YYYY-MM-DD"
		}
		f.ReleaseDate = t
	}
	if raw := get("genres"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Genres); err != nil {
			return nil, "Genres must be a JSON array of strings"
		}
	}
	if raw := get("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Tags); err != nil {
			return nil, "Tags must be a JSON array of strings"
		}
	}
	if raw := get("cast"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Cast); err != nil {
			return nil, "Cast must be a JSON array of objects"
		}
	}
	if raw := get("trailer"); raw != "" {
		var tr trailerField
		if err := json.Unmarshal([]byte(raw), &tr); err != nil {
			return nil, "Trailer must be an object with url and public_id"
		}
		f.Trailer = &models.MediaAsset{URL: tr.URL, PublicID: tr.PublicID}
	}
	return f, ""
}

// validate applies the catalog's field rules. requireTrailer is set on
// create, where the trailer must already be uploaded.
func (f *movieForm) validate(requireTrailer bool) string {
	if f.Title == "" {
		return "Movie Title Missing"
	}
	if f.Storyline == "" {
		return "Storyline Missing"
	}
	if f.Language == "" {
		return "Language Missing"
	}
	if f.ReleaseDate.IsZero() {
		return "Release Date Missing"
	}
	switch f.Type {
	case models.TypeMovie, models.TypeWebSeries, models.TypeDocumentary:
	default:
		return fmt.Sprintf("Type must be one of %q, %q, %q",
			models.TypeMovie, models.TypeWebSeries, models.TypeDocumentary)
	}
	for _, g := range f.Genres {
		if _, ok := genreSet[g]; !ok {
			return "Invalid Genres"
		}
	}
	if len(f.Tags) == 0 {
		return "Tags must be a non-empty array of strings"
	}
	for _, t := range f.Tags {
		if strings.TrimSpace(t) == "" {
			return "Invalid Tag"
		}
	}
	for _, c := range f.Cast {
		if strings.TrimSpace(c.ArtistName) == "" {
			return "Artist Name is Missing"
		}
		if strings.TrimSpace(c.RoleAs) == "" {
			return "Role of a Cast is Missing"
		}
	}
	if requireTrailer {
		if f.Trailer == nil {
			return "Trailer must be an object with url and public_id"
		}
		if msg := validateTrailer(f.Trailer); msg != "" {
			return msg
		}
	} else if f.Trailer != nil {
		if msg := validateTrailer(f.Trailer); msg != "" {
			return msg
		}
	}
	return ""
}

// validateTrailer checks the trailer URL is a well-formed http(s) URL whose
// last path segment matches the public id.
func validateTrailer(tr *models.MediaAsset) string {
	u, err := url.Parse(tr.URL)
	if err != nil || !strings.HasPrefix(u.Scheme, "http") {
		return "Invalid Trailer URL"
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segs[len(segs)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		last = last[:dot]
	}
	if tr.PublicID == "" || !strings.HasSuffix(tr.PublicID, last) {
		return "Trailer Public ID mismatch"
	}
	return ""
}
