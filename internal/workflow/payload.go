package workflow

import (
	"unicode/utf8"

	"reviewsync/internal/identity"
	"reviewsync/internal/plex"
	"reviewsync/internal/review"
	"reviewsync/internal/services"
)

// BuildPayload converts a resolved review into a community submission. The
// message is cut to maxLength characters; a zero rating is left out.
func BuildPayload(record review.Record, entity identity.Entity, maxLength int) (plex.ReviewPayload, error) {
	metadataID, err := plex.MetadataID(entity.GUID())
	if err != nil {
		return plex.ReviewPayload{}, services.Wrap(services.ErrResolution, "workflow", "build payload", entity.Title(), err)
	}
	payload := plex.ReviewPayload{
		MetadataID:  metadataID,
		HasSpoilers: record.HasSpoilers,
		Message:     Truncate(record.Body, maxLength),
	}
	if rating, ok := record.RatingValue(); ok {
		payload.Rating = &rating
	}
	return payload, nil
}

// Truncate keeps at most limit characters of s, counted as code points.
// A non-positive limit disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
