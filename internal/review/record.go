package review

import (
	"fmt"
	"strings"
	"time"
)

// TargetType names the kind of media a review is addressed to.
type TargetType string

const (
	TargetMovie   TargetType = "movie"
	TargetShow    TargetType = "show"
	TargetSeason  TargetType = "season"
	TargetEpisode TargetType = "episode"
)

// Supported reports whether reviews of this type can be mirrored.
func (t TargetType) Supported() bool {
	switch t {
	case TargetMovie, TargetShow, TargetSeason, TargetEpisode:
		return true
	default:
		return false
	}
}

// Target identifies what a review is about.
type Target struct {
	// ExternalIDs are the movie- or show-level identifiers in scheme://value
	// form, most specific scheme first (imdb, tmdb, tvdb).
	ExternalIDs   []string
	SeasonNumber  int
	EpisodeNumber int
	Title         string
}

// PrimaryExternalID returns the preferred identifier, or "" when the target has none.
func (t Target) PrimaryExternalID() string {
	if len(t.ExternalIDs) == 0 {
		return ""
	}
	return t.ExternalIDs[0]
}

// Record is a single remote review as fetched at the start of a run.
type Record struct {
	CommentID   string
	UpdatedAt   time.Time
	Body        string
	HasSpoilers bool
	Rating      *float64
	TargetType  TargetType
	Target      Target
}

// Label renders a short human description such as "The Wire S02E05".
func (r Record) Label() string {
	title := strings.TrimSpace(r.Target.Title)
	if title == "" {
		title = r.Target.PrimaryExternalID()
	}
	switch r.TargetType {
	case TargetSeason:
		return fmt.Sprintf("%s season %d", title, r.Target.SeasonNumber)
	case TargetEpisode:
		return fmt.Sprintf("%s S%02dE%02d", title, r.Target.SeasonNumber, r.Target.EpisodeNumber)
	default:
		return title
	}
}

// RatingValue returns the rating and whether one should be forwarded.
// A zero rating is treated as absent.
func (r Record) RatingValue() (float64, bool) {
	if r.Rating == nil || *r.Rating == 0 {
		return 0, false
	}
	return *r.Rating, true
}
