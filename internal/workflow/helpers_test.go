package workflow_test

import (
	"context"
	"sync"
	"time"

	"reviewsync/internal/identity"
	"reviewsync/internal/plex"
	"reviewsync/internal/review"
	"reviewsync/internal/testsupport"
)

type fakeSource struct {
	records []review.Record
	err     error
	calls   int
}

func (f *fakeSource) FetchReviews(context.Context, string) ([]review.Record, error) {
	f.calls++
	return f.records, f.err
}

type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []plex.ReviewPayload
	results  []plex.SubmissionResult
	errs     []error
}

func (f *fakeSubmitter) Submit(_ context.Context, payload plex.ReviewPayload) (plex.SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.payloads)
	f.payloads = append(f.payloads, payload)
	if n < len(f.errs) && f.errs[n] != nil {
		return plex.SubmissionResult{}, f.errs[n]
	}
	if n < len(f.results) {
		return f.results[n], nil
	}
	return published(), nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func published() plex.SubmissionResult {
	return plex.SubmissionResult{HTTPStatus: 200, DeliveryStatus: plex.DeliveryPublished, RawBody: `{"data":{"createReview":{"status":"PUBLISHED"}}}`}
}

func movieReview(id, imdb, body string, updated time.Time) review.Record {
	return review.Record{
		CommentID:  id,
		UpdatedAt:  updated,
		Body:       body,
		TargetType: review.TargetMovie,
		Target:     review.Target{ExternalIDs: []string{"imdb://" + imdb}, Title: "Movie " + id},
	}
}

// stubLibrary serves two movies and one show with a season and episode.
func stubLibrary() *testsupport.StubLibrary {
	show := testsupport.StubShow("200", "plex://show/wire", "The Wire", "imdb://tt0306414", "tvdb://79126")
	season := show.AddSeason(2, "220", "plex://season/wire-s2")
	season.AddEpisode(5, "225", "plex://episode/wire-s2e5")
	return &testsupport.StubLibrary{
		SectionList: []identity.Section{
			{Key: "1", Type: "movie", Title: "Movies"},
			{Key: "2", Type: "show", Title: "TV"},
		},
		Items: map[string][]identity.Entity{
			"1": {
				testsupport.StubMovie("100", "plex://movie/heat", "Heat", "imdb://tt0113277"),
				testsupport.StubMovie("101", "plex://movie/ronin", "Ronin", "imdb://tt0122690"),
				testsupport.StubMovie("102", "com.plexapp.agents.imdb://tt0000042", "Legacy", "imdb://tt0000042"),
			},
			"2": {show},
		},
	}
}
