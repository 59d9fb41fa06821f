package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"reviewsync/internal/logging"
	"reviewsync/internal/services"
)

// Entity is a read-only handle on a local library item.
type Entity interface {
	// Key is the library rating key.
	Key() string
	// GUID is the library-native identifier, e.g. plex://movie/5d776...
	GUID() string
	// Kind is movie, show, season, or episode.
	Kind() string
	Title() string
	// ExternalIDs lists cross-system identifiers in scheme://value form.
	ExternalIDs() []string
	// Season returns the child season numbered n, or ErrNotFound.
	Season(ctx context.Context, n int) (Entity, error)
	// Episode returns the episode at season/episode, or ErrNotFound.
	Episode(ctx context.Context, season, episode int) (Entity, error)
}

// Section is a top-level library container.
type Section struct {
	Key   string
	Type  string
	Title string
}

// Reviewable reports whether items in the section can carry reviews.
func (s Section) Reviewable() bool {
	switch strings.ToLower(s.Type) {
	case "movie", "show":
		return true
	default:
		return false
	}
}

// Library exposes the sections of a media library and the items inside them.
type Library interface {
	Sections(ctx context.Context) ([]Section, error)
	SectionItems(ctx context.Context, sectionKey string) ([]Entity, error)
}

// Index maps external and library-native identifiers to library items. It is
// built once per run and only read afterwards. When two items claim the same
// identifier the one scanned last wins.
type Index struct {
	entries map[string]Entity
	items   int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]Entity)}
}

// Add registers entity under its GUID and every external identifier it carries.
func (i *Index) Add(entity Entity) {
	if entity == nil {
		return
	}
	i.items++
	if guid := strings.TrimSpace(entity.GUID()); guid != "" {
		i.entries[guid] = entity
	}
	for _, id := range entity.ExternalIDs() {
		if id = strings.TrimSpace(id); id != "" {
			i.entries[id] = entity
		}
	}
}

// Lookup returns the entity registered under id.
func (i *Index) Lookup(id string) (Entity, bool) {
	if i == nil {
		return nil, false
	}
	entity, ok := i.entries[strings.TrimSpace(id)]
	return entity, ok
}

// Len reports the number of distinct identifiers in the index.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}

// Items reports how many library items were added.
func (i *Index) Items() int {
	if i == nil {
		return 0
	}
	return i.items
}

// Build scans every reviewable section of lib into a fresh index.
func Build(ctx context.Context, lib Library, logger *slog.Logger) (*Index, error) {
	logger = logging.NewComponentLogger(logger, "identity")

	sections, err := lib.Sections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list library sections: %w", err)
	}

	index := NewIndex()
	for _, section := range sections {
		if !section.Reviewable() {
			logger.Debug("library section skipped",
				logging.String("section", section.Title),
				logging.String("section_type", section.Type),
			)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := lib.SectionItems(ctx, section.Key)
		if err != nil {
			return nil, fmt.Errorf("list items of section %q: %w", section.Title, err)
		}
		for _, item := range items {
			index.Add(item)
		}
		logger.Debug("library section indexed",
			logging.String("section", section.Title),
			logging.Int("items", len(items)),
		)
	}

	logger.Info("identity index built",
		logging.Int("items", index.Items()),
		logging.Int("identifiers", index.Len()),
		logging.String(logging.FieldEventType, "index_built"),
	)
	return index, nil
}

// BuildFunc produces an index on demand.
type BuildFunc func(ctx context.Context) (*Index, error)

// Lazy defers an index build until first use and shares the outcome, success
// or failure, with every later caller of the same run.
type Lazy struct {
	build BuildFunc

	once  sync.Once
	index *Index
	err   error
}

// NewLazy wraps build so it runs at most once.
func NewLazy(build BuildFunc) *Lazy {
	return &Lazy{build: build}
}

// Get returns the index, building it on the first call.
func (l *Lazy) Get(ctx context.Context) (*Index, error) {
	l.once.Do(func() {
		if l.build == nil {
			l.err = services.Wrap(services.ErrConfiguration, "identity", "build index", "no library configured", nil)
			return
		}
		l.index, l.err = l.build(ctx)
	})
	return l.index, l.err
}
