package trakt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reviewsync/internal/review"
)

type commentEnvelope struct {
	Type    string       `json:"type"`
	Comment comment      `json:"comment"`
	Movie   *mediaObject `json:"movie"`
	Show    *mediaObject `json:"show"`
	Season  *struct {
		Number int `json:"number"`
	} `json:"season"`
	Episode *struct {
		Season int    `json:"season"`
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"episode"`
}

type comment struct {
	ID         int64    `json:"id"`
	Comment    string   `json:"comment"`
	Spoiler    bool     `json:"spoiler"`
	UpdatedAt  string   `json:"updated_at"`
	UserRating *float64 `json:"user_rating"`
}

type mediaObject struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   struct {
		IMDB string `json:"imdb"`
		TMDB int64  `json:"tmdb"`
		TVDB int64  `json:"tvdb"`
	} `json:"ids"`
}

// externalIDs renders the ids the way Plex reports them in its Guid list.
func (m *mediaObject) externalIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, 3)
	if imdb := strings.TrimSpace(m.IDs.IMDB); imdb != "" {
		ids = append(ids, "imdb://"+imdb)
	}
	if m.IDs.TMDB > 0 {
		ids = append(ids, "tmdb://"+strconv.FormatInt(m.IDs.TMDB, 10))
	}
	if m.IDs.TVDB > 0 {
		ids = append(ids, "tvdb://"+strconv.FormatInt(m.IDs.TVDB, 10))
	}
	return ids
}

func (e commentEnvelope) toRecord() (review.Record, error) {
	if e.Comment.ID == 0 {
		return review.Record{}, errors.New("comment id missing")
	}
	updated, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(e.Comment.UpdatedAt))
	if err != nil {
		return review.Record{}, fmt.Errorf("parse updated_at %q: %w", e.Comment.UpdatedAt, err)
	}

	record := review.Record{
		CommentID:   strconv.FormatInt(e.Comment.ID, 10),
		UpdatedAt:   updated.UTC(),
		Body:        e.Comment.Comment,
		HasSpoilers: e.Comment.Spoiler,
		Rating:      e.Comment.UserRating,
		TargetType:  review.TargetType(strings.ToLower(strings.TrimSpace(e.Type))),
	}

	// Seasons and episodes are looked up through their show, so the show ids
	// of this comment are the only ones that matter.
	var parent *mediaObject
	switch record.TargetType {
	case review.TargetMovie:
		parent = e.Movie
	case review.TargetShow, review.TargetSeason, review.TargetEpisode:
		parent = e.Show
	}
	if parent != nil {
		record.Target.Title = parent.Title
		record.Target.ExternalIDs = parent.externalIDs()
	}

	switch record.TargetType {
	case review.TargetSeason:
		if e.Season == nil {
			return review.Record{}, errors.New("season comment without season number")
		}
		record.Target.SeasonNumber = e.Season.Number
	case review.TargetEpisode:
		if e.Episode == nil {
			return review.Record{}, errors.New("episode comment without episode numbers")
		}
		record.Target.SeasonNumber = e.Episode.Season
		record.Target.EpisodeNumber = e.Episode.Number
	}
	return record, nil
}
