package review_test

import (
	"testing"

	"reviewsync/internal/review"
)

func TestPrimaryExternalID(t *testing.T) {
	target := review.Target{ExternalIDs: []string{"imdb://tt0306414", "tmdb://1438"}}
	if got := target.PrimaryExternalID(); got != "imdb://tt0306414" {
		t.Fatalf("expected imdb id first, got %q", got)
	}
	if got := (review.Target{}).PrimaryExternalID(); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		record review.Record
		want   string
	}{
		{review.Record{TargetType: review.TargetMovie, Target: review.Target{Title: "Heat"}}, "Heat"},
		{review.Record{TargetType: review.TargetSeason, Target: review.Target{Title: "The Wire", SeasonNumber: 0}}, "The Wire season 0"},
		{review.Record{TargetType: review.TargetEpisode, Target: review.Target{Title: "The Wire", SeasonNumber: 2, EpisodeNumber: 5}}, "The Wire S02E05"},
		{review.Record{TargetType: review.TargetShow, Target: review.Target{ExternalIDs: []string{"tvdb://79126"}}}, "tvdb://79126"},
	}
	for _, tc := range cases {
		if got := tc.record.Label(); got != tc.want {
			t.Fatalf("Label() = %q, want %q", got, tc.want)
		}
	}
}

func TestRatingValueTreatsZeroAsAbsent(t *testing.T) {
	zero := 0.0
	eight := 8.0
	if _, ok := (review.Record{}).RatingValue(); ok {
		t.Fatal("expected nil rating to be absent")
	}
	if _, ok := (review.Record{Rating: &zero}).RatingValue(); ok {
		t.Fatal("expected zero rating to be absent")
	}
	if value, ok := (review.Record{Rating: &eight}).RatingValue(); !ok || value != 8 {
		t.Fatalf("expected rating 8, got %v %v", value, ok)
	}
}

func TestSupportedTargetTypes(t *testing.T) {
	for _, kind := range []review.TargetType{review.TargetMovie, review.TargetShow, review.TargetSeason, review.TargetEpisode} {
		if !kind.Supported() {
			t.Fatalf("expected %s supported", kind)
		}
	}
	if review.TargetType("list").Supported() {
		t.Fatal("expected list reviews unsupported")
	}
}
