package testsupport

import (
	"context"
	"fmt"
	"sync"

	"reviewsync/internal/identity"
)

// StubEntity is an in-memory library item. Shows hold their seasons and
// seasons hold their episodes, keyed by number.
type StubEntity struct {
	RatingKey string
	PlexGUID  string
	Type      string
	Name      string
	IDs       []string
	Seasons   map[int]*StubEntity
	Episodes  map[int]*StubEntity
	// NavErr, when set, is returned by Season and Episode.
	NavErr error
}

func (e *StubEntity) Key() string           { return e.RatingKey }
func (e *StubEntity) GUID() string          { return e.PlexGUID }
func (e *StubEntity) Kind() string          { return e.Type }
func (e *StubEntity) Title() string         { return e.Name }
func (e *StubEntity) ExternalIDs() []string { return e.IDs }

func (e *StubEntity) Season(_ context.Context, n int) (identity.Entity, error) {
	if e.NavErr != nil {
		return nil, e.NavErr
	}
	season, ok := e.Seasons[n]
	if !ok {
		return nil, fmt.Errorf("season %d: %w", n, identity.ErrNotFound)
	}
	return season, nil
}

func (e *StubEntity) Episode(ctx context.Context, season, episode int) (identity.Entity, error) {
	s, err := e.Season(ctx, season)
	if err != nil {
		return nil, err
	}
	ep, ok := s.(*StubEntity).Episodes[episode]
	if !ok {
		return nil, fmt.Errorf("episode %d: %w", episode, identity.ErrNotFound)
	}
	return ep, nil
}

// StubMovie builds a movie entity.
func StubMovie(key, guid, title string, ids ...string) *StubEntity {
	return &StubEntity{RatingKey: key, PlexGUID: guid, Type: "movie", Name: title, IDs: ids}
}

// StubShow builds a show entity with no seasons.
func StubShow(key, guid, title string, ids ...string) *StubEntity {
	return &StubEntity{RatingKey: key, PlexGUID: guid, Type: "show", Name: title, IDs: ids, Seasons: map[int]*StubEntity{}}
}

// AddSeason attaches season n to a show and returns it.
func (e *StubEntity) AddSeason(n int, key, guid string) *StubEntity {
	season := &StubEntity{RatingKey: key, PlexGUID: guid, Type: "season", Name: fmt.Sprintf("Season %d", n), Episodes: map[int]*StubEntity{}}
	e.Seasons[n] = season
	return season
}

// AddEpisode attaches episode n to a season and returns it.
func (e *StubEntity) AddEpisode(n int, key, guid string) *StubEntity {
	episode := &StubEntity{RatingKey: key, PlexGUID: guid, Type: "episode", Name: fmt.Sprintf("Episode %d", n)}
	e.Episodes[n] = episode
	return episode
}

// StubLibrary serves fixed sections and counts scans.
type StubLibrary struct {
	SectionList []identity.Section
	Items       map[string][]identity.Entity
	Err         error

	mu           sync.Mutex
	sectionCalls int
}

func (l *StubLibrary) Sections(context.Context) ([]identity.Section, error) {
	l.mu.Lock()
	l.sectionCalls++
	l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	return l.SectionList, nil
}

func (l *StubLibrary) SectionItems(_ context.Context, key string) ([]identity.Entity, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Items[key], nil
}

// Scans reports how many times the section list was requested.
func (l *StubLibrary) Scans() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sectionCalls
}
