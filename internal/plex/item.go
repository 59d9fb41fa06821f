package plex

import (
	"context"
	"fmt"

	"reviewsync/internal/identity"
)

// Item is a library item backed by the server it was read from.
type Item struct {
	client *Client
	meta   metadataJSON
}

func newItem(c *Client, m metadataJSON) *Item {
	return &Item{client: c, meta: m}
}

func (i *Item) Key() string           { return i.meta.RatingKey }
func (i *Item) GUID() string          { return i.meta.GUID }
func (i *Item) Kind() string          { return i.meta.Type }
func (i *Item) Title() string         { return i.meta.Title }
func (i *Item) ExternalIDs() []string { return i.meta.externalIDs() }

// Season returns the child season numbered n. Season 0 holds specials.
func (i *Item) Season(ctx context.Context, n int) (identity.Entity, error) {
	children, err := i.client.children(ctx, i.meta.RatingKey)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Type != "season" {
			continue
		}
		if index, ok := intValue(child.Index); ok && index == n {
			return newItem(i.client, child), nil
		}
	}
	return nil, fmt.Errorf("season %d of %q: %w", n, i.meta.Title, identity.ErrNotFound)
}

// Episode returns the episode at the given season and episode numbers.
func (i *Item) Episode(ctx context.Context, season, episode int) (identity.Entity, error) {
	leaves, err := i.client.allLeaves(ctx, i.meta.RatingKey)
	if err != nil {
		return nil, err
	}
	for _, leaf := range leaves {
		if leaf.Type != "episode" {
			continue
		}
		parent, okParent := intValue(leaf.ParentIndex)
		index, okIndex := intValue(leaf.Index)
		if okParent && okIndex && parent == season && index == episode {
			return newItem(i.client, leaf), nil
		}
	}
	return nil, fmt.Errorf("episode S%02dE%02d of %q: %w", season, episode, i.meta.Title, identity.ErrNotFound)
}
