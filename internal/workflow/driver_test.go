package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"reviewsync/internal/plex"
	"reviewsync/internal/review"
	"reviewsync/internal/services"
	"reviewsync/internal/testsupport"
	"reviewsync/internal/workflow"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type harness struct {
	source    *fakeSource
	submitter *fakeSubmitter
	library   *testsupport.StubLibrary
	driver    *workflow.Driver
	logs      *bytes.Buffer
	ledger    interface {
		Count(ctx context.Context) (int, error)
	}
}

func newHarness(t *testing.T, records []review.Record, opts workflow.Options) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewLedger(t, cfg)
	h := &harness{
		source:    &fakeSource{records: records},
		submitter: &fakeSubmitter{},
		library:   stubLibrary(),
		logs:      &bytes.Buffer{},
		ledger:    store,
	}
	if opts.UserID == "" {
		opts.UserID = "tester"
	}
	h.driver = workflow.NewDriver(workflow.Dependencies{
		Source:    h.source,
		Ledger:    store,
		Library:   h.library,
		Submitter: h.submitter,
	}, opts, slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return h
}

// warnings returns the comment ids of WARN records carrying eventType.
func (h *harness) warnings(t *testing.T, eventType string) []string {
	t.Helper()
	var ids []string
	for _, line := range bytes.Split(h.logs.Bytes(), []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["level"] != "WARN" || entry["event_type"] != eventType {
			continue
		}
		id, _ := entry["comment_id"].(string)
		ids = append(ids, id)
	}
	return ids
}

func (h *harness) recorded(t *testing.T) int {
	t.Helper()
	n, err := h.ledger.Count(context.Background())
	if err != nil {
		t.Fatalf("ledger count: %v", err)
	}
	return n
}

func TestRunSubmitsAndRecordsReviews(t *testing.T) {
	rating := 9.0
	episode := review.Record{
		CommentID:   "2",
		UpdatedAt:   t0,
		Body:        "Omar!",
		HasSpoilers: true,
		Rating:      &rating,
		TargetType:  review.TargetEpisode,
		Target:      review.Target{ExternalIDs: []string{"imdb://tt0306414"}, SeasonNumber: 2, EpisodeNumber: 5, Title: "The Wire"},
	}
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "Great heist film", t0), episode}, workflow.Options{RunID: "run-1"})

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID != "run-1" || summary.Fetched != 2 || summary.Candidates != 2 || summary.Submitted != 2 || summary.Recorded != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Failures() != 0 {
		t.Fatalf("expected no failures, got %d", summary.Failures())
	}

	if len(h.submitter.payloads) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(h.submitter.payloads))
	}
	first, second := h.submitter.payloads[0], h.submitter.payloads[1]
	if first.MetadataID != "heat" || first.Rating != nil || first.HasSpoilers {
		t.Fatalf("unexpected movie payload: %+v", first)
	}
	if second.MetadataID != "wire-s2e5" || second.Rating == nil || *second.Rating != 9 || !second.HasSpoilers {
		t.Fatalf("unexpected episode payload: %+v", second)
	}
	if h.recorded(t) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", h.recorded(t))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "Great", t0)}, workflow.Options{})

	if _, err := h.driver.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Candidates != 0 || summary.Skipped() != 1 {
		t.Fatalf("expected second run to skip everything, got %+v", summary)
	}
	if h.submitter.count() != 1 {
		t.Fatalf("expected exactly one submission across both runs, got %d", h.submitter.count())
	}
}

func TestRunResubmitsEditedReview(t *testing.T) {
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "Great", t0)}, workflow.Options{})
	if _, err := h.driver.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	h.source.records = []review.Record{movieReview("1", "tt0113277", "Great, on rewatch", t0.Add(time.Hour))}
	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Submitted != 1 || h.submitter.count() != 2 {
		t.Fatalf("expected edited review to be resubmitted, got %+v", summary)
	}
	if h.recorded(t) != 1 {
		t.Fatalf("expected upsert to keep a single entry, got %d", h.recorded(t))
	}
	if h.library.Scans() != 2 {
		t.Fatalf("expected a fresh index for each run, got %d scans", h.library.Scans())
	}
}

func TestRunSkipsIndexWhenNothingIsNew(t *testing.T) {
	h := newHarness(t, nil, workflow.Options{})
	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.library.Scans() != 0 {
		t.Fatalf("expected no library scan, got %d", h.library.Scans())
	}
	if summary.Fetched != 0 || summary.Submitted != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunBuildsIndexOnceForManyCandidates(t *testing.T) {
	records := []review.Record{
		movieReview("1", "tt0113277", "a", t0),
		movieReview("2", "tt0122690", "b", t0),
	}
	h := newHarness(t, records, workflow.Options{})
	if _, err := h.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.library.Scans() != 1 {
		t.Fatalf("expected one index build, got %d", h.library.Scans())
	}
}

func TestRunContinuesPastUnresolvableReviews(t *testing.T) {
	records := []review.Record{
		movieReview("1", "tt9999999", "not in library", t0),
		movieReview("2", "tt0000042", "legacy agent", t0),
		{CommentID: "3", UpdatedAt: t0, Body: "list", TargetType: "list"},
		movieReview("4", "tt0113277", "resolvable", t0),
	}
	h := newHarness(t, records, workflow.Options{})

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Unresolved != 3 {
		t.Fatalf("expected 3 unresolved reviews, got %+v", summary)
	}
	if h.submitter.count() != 1 || h.submitter.payloads[0].MetadataID != "heat" {
		t.Fatalf("expected only the resolvable review submitted, got %+v", h.submitter.payloads)
	}
	if h.recorded(t) != 1 {
		t.Fatalf("expected only the delivered review recorded, got %d", h.recorded(t))
	}

	warned := h.warnings(t, "review_unresolved")
	if strings.Join(warned, ",") != "1,2,3" {
		t.Fatalf("expected exactly one unresolved warning per review, got %v", warned)
	}
}

func TestRunWarnsOncePerUnresolvedReview(t *testing.T) {
	h := newHarness(t, []review.Record{
		movieReview("1", "tt9999999", "not in library", t0),
		movieReview("2", "tt0113277", "resolvable", t0),
	}, workflow.Options{})

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Unresolved != 1 || summary.Submitted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	warned := h.warnings(t, "review_unresolved")
	if len(warned) != 1 || warned[0] != "1" {
		t.Fatalf("expected a single warning for comment 1, got %v", warned)
	}
}

func TestRunSkipsIndexForUnsupportedTargets(t *testing.T) {
	h := newHarness(t, []review.Record{
		{CommentID: "3", UpdatedAt: t0, Body: "list", TargetType: "list"},
	}, workflow.Options{})

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Unresolved != 1 || summary.Candidates != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if h.library.Scans() != 0 {
		t.Fatalf("expected no library scan for unsupported targets, got %d", h.library.Scans())
	}
	if len(h.warnings(t, "review_unresolved")) != 1 {
		t.Fatal("expected the unsupported review to be reported")
	}
}

func TestRunLeavesLedgerUntouchedOnRejection(t *testing.T) {
	records := []review.Record{
		movieReview("1", "tt0113277", "a", t0),
		movieReview("2", "tt0122690", "b", t0),
		movieReview("3", "tt0113277", "c", t0),
	}
	h := newHarness(t, records, workflow.Options{})
	h.submitter.results = []plex.SubmissionResult{
		{HTTPStatus: http.StatusOK, DeliveryStatus: plex.DeliveryRejected, RawBody: `{"data":{"createReview":{"status":"REJECTED"}}}`},
		{HTTPStatus: http.StatusInternalServerError, DeliveryStatus: plex.DeliveryUnknown, RawBody: "oops"},
		published(),
	}

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Rejected != 2 || summary.Recorded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	again, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Candidates != 2 {
		t.Fatalf("expected rejected reviews to be retried, got %+v", again)
	}
}

func TestRunCountsTransportFailures(t *testing.T) {
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "a", t0), movieReview("2", "tt0122690", "b", t0)}, workflow.Options{})
	h.submitter.errs = []error{services.Wrap(services.ErrTransport, "plex", "submit review", "request failed", errors.New("connection reset"))}

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.TransportFailures != 1 || summary.Recorded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunFetchFailureEndsQuietly(t *testing.T) {
	h := newHarness(t, nil, workflow.Options{})
	h.source.err = services.Wrap(services.ErrTransport, "trakt", "GET", "returned 503", nil)

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("expected fetch failure to be absorbed, got %v", err)
	}
	if !summary.FetchFailed || summary.Failures() != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if h.library.Scans() != 0 || h.submitter.count() != 0 {
		t.Fatal("expected no further work after fetch failure")
	}
}

func TestRunIndexFailureEndsRun(t *testing.T) {
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "a", t0)}, workflow.Options{})
	h.library.Err = errors.New("server unreachable")

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.IndexFailed || h.submitter.count() != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if h.recorded(t) != 0 {
		t.Fatal("expected ledger untouched")
	}
}

func TestRunDryRunDoesNotSubmitOrRecord(t *testing.T) {
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "a", t0)}, workflow.Options{DryRun: true})

	summary, err := h.driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.DryRun != 1 || summary.Submitted != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if h.submitter.count() != 0 || h.recorded(t) != 0 {
		t.Fatal("dry run must not submit or record")
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	h := newHarness(t, []review.Record{movieReview("1", "tt0113277", "a", t0)}, workflow.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.driver.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.submitter.count() != 0 {
		t.Fatal("expected no submissions after cancellation")
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	driver := workflow.NewDriver(workflow.Dependencies{}, workflow.Options{UserID: "x"}, nil)
	_, err := driver.Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "source") {
		t.Fatalf("expected missing source to be named, got %v", err)
	}
}
