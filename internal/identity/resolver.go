package identity

import (
	"context"
	"errors"
	"fmt"

	"reviewsync/internal/review"
	"reviewsync/internal/services"
)

var (
	// ErrNotFound means no library item matches the review target.
	ErrNotFound = errors.New("no matching library item")
	// ErrUnsupportedTarget means the review addresses a kind of media that cannot be mirrored.
	ErrUnsupportedTarget = errors.New("unsupported review target")
)

// Resolve finds the library item a review is addressed to. Only the record's
// own identifiers are consulted. Misses are reported as ErrNotFound; failures
// talking to the library keep their transport classification.
func Resolve(ctx context.Context, record review.Record, index *Index) (Entity, error) {
	switch record.TargetType {
	case review.TargetMovie:
		return lookup(record, index, "movie")
	case review.TargetShow:
		return lookup(record, index, "show")
	case review.TargetSeason:
		show, err := lookup(record, index, "show")
		if err != nil {
			return nil, err
		}
		season, err := show.Season(ctx, record.Target.SeasonNumber)
		if err != nil {
			return nil, navigationError(err, fmt.Sprintf("season %d of %q", record.Target.SeasonNumber, show.Title()))
		}
		return season, nil
	case review.TargetEpisode:
		show, err := lookup(record, index, "show")
		if err != nil {
			return nil, err
		}
		episode, err := show.Episode(ctx, record.Target.SeasonNumber, record.Target.EpisodeNumber)
		if err != nil {
			return nil, navigationError(err, fmt.Sprintf("S%02dE%02d of %q", record.Target.SeasonNumber, record.Target.EpisodeNumber, show.Title()))
		}
		return episode, nil
	default:
		return nil, services.Wrap(services.ErrResolution, "identity", "resolve",
			fmt.Sprintf("target type %q", record.TargetType), ErrUnsupportedTarget)
	}
}

func lookup(record review.Record, index *Index, kind string) (Entity, error) {
	for _, id := range record.Target.ExternalIDs {
		entity, ok := index.Lookup(id)
		if !ok || entity.Kind() != kind {
			continue
		}
		return entity, nil
	}
	return nil, services.Wrap(services.ErrResolution, "identity", "resolve",
		fmt.Sprintf("%s %q with ids %v", kind, record.Target.Title, record.Target.ExternalIDs), ErrNotFound)
}

func navigationError(err error, what string) error {
	if errors.Is(err, ErrNotFound) {
		return services.Wrap(services.ErrResolution, "identity", "resolve", what, ErrNotFound)
	}
	return err
}
