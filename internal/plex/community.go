package plex

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"reviewsync/internal/services"
)

//go:embed create_review.graphql
var createReviewQuery string

const createReviewOperation = "createReview"

// maxResponseBody bounds how much of a community response is kept for logs.
const maxResponseBody = 64 * 1024

// DeliveryStatus is the review state reported by the community API.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryPublished DeliveryStatus = "published"
	DeliveryRejected  DeliveryStatus = "rejected"
	DeliveryUnknown   DeliveryStatus = "unknown"
)

func parseDeliveryStatus(raw string) DeliveryStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING":
		return DeliveryPending
	case "PUBLISHED":
		return DeliveryPublished
	case "REJECTED":
		return DeliveryRejected
	default:
		return DeliveryUnknown
	}
}

// ReviewPayload is one review addressed to a library item.
type ReviewPayload struct {
	MetadataID  string
	HasSpoilers bool
	Message     string
	// Rating is omitted from the request when nil.
	Rating *float64
}

// SubmissionResult describes how the community API answered a submission.
type SubmissionResult struct {
	HTTPStatus     int
	DeliveryStatus DeliveryStatus
	RawBody        string
}

// Succeeded reports whether the review was accepted: HTTP 200 with a
// pending or published status. Everything else is a failure.
func (r SubmissionResult) Succeeded() bool {
	if r.HTTPStatus != http.StatusOK {
		return false
	}
	return r.DeliveryStatus == DeliveryPending || r.DeliveryStatus == DeliveryPublished
}

type reviewInput struct {
	Metadata    string   `json:"metadata"`
	HasSpoilers bool     `json:"hasSpoilers"`
	Message     string   `json:"message"`
	Rating      *float64 `json:"rating,omitempty"`
}

type graphQLVariables struct {
	Input reviewInput `json:"input"`
}

type graphQLRequest struct {
	Query         string           `json:"query"`
	Variables     graphQLVariables `json:"variables"`
	OperationName string           `json:"operationName"`
}

type createReviewResponse struct {
	Data *struct {
		CreateReview *struct {
			Status string `json:"status"`
		} `json:"createReview"`
	} `json:"data"`
}

// Submitter posts reviews to the Plex community GraphQL endpoint.
type Submitter struct {
	transport
	endpoint string
	token    string
}

// NewSubmitter constructs a submitter for the community endpoint.
func NewSubmitter(endpoint, token string, opts ...Option) *Submitter {
	return &Submitter{
		transport: newTransport(opts),
		endpoint:  strings.TrimSpace(endpoint),
		token:     strings.TrimSpace(token),
	}
}

// Submit sends one createReview mutation. A returned error means the request
// never produced a response; any response, successful or not, is described by
// the SubmissionResult.
func (s *Submitter) Submit(ctx context.Context, payload ReviewPayload) (SubmissionResult, error) {
	body := graphQLRequest{Query: createReviewQuery, OperationName: createReviewOperation}
	body.Variables.Input = reviewInput{
		Metadata:    payload.MetadataID,
		HasSpoilers: payload.HasSpoilers,
		Message:     payload.Message,
		Rating:      payload.Rating,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return SubmissionResult{}, services.Wrap(services.ErrValidation, "plex", "submit review", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return SubmissionResult{}, services.Wrap(services.ErrConfiguration, "plex", "submit review", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", s.token)
	applyStandardHeaders(req, s.clientID)

	resp, err := s.http.Do(req)
	if err != nil {
		return SubmissionResult{}, services.Wrap(services.ErrTransport, "plex", "submit review", "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return SubmissionResult{}, services.Wrap(services.ErrTransport, "plex", "submit review",
			fmt.Sprintf("read response (status %d)", resp.StatusCode), err)
	}

	result := SubmissionResult{
		HTTPStatus:     resp.StatusCode,
		DeliveryStatus: DeliveryUnknown,
		RawBody:        strings.TrimSpace(string(raw)),
	}
	var decoded createReviewResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Data != nil && decoded.Data.CreateReview != nil {
		result.DeliveryStatus = parseDeliveryStatus(decoded.Data.CreateReview.Status)
	}
	return result, nil
}
