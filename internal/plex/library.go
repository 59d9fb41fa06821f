package plex

import (
	"context"
	"net/url"

	"reviewsync/internal/identity"
)

// Sections lists the library sections of the server.
func (c *Client) Sections(ctx context.Context) ([]identity.Section, error) {
	var env mediaContainerEnvelope
	if err := c.getJSON(ctx, "/library/sections", nil, &env); err != nil {
		return nil, err
	}
	sections := make([]identity.Section, 0, len(env.MediaContainer.Directory))
	for _, dir := range env.MediaContainer.Directory {
		if dir.Key == "" {
			continue
		}
		sections = append(sections, identity.Section{Key: dir.Key, Type: dir.Type, Title: dir.Title})
	}
	return sections, nil
}

// SectionItems lists every top-level item of a section with its external
// identifiers included.
func (c *Client) SectionItems(ctx context.Context, sectionKey string) ([]identity.Entity, error) {
	var env mediaContainerEnvelope
	path := "/library/sections/" + url.PathEscape(sectionKey) + "/all"
	if err := c.getJSON(ctx, path, url.Values{"includeGuids": {"1"}}, &env); err != nil {
		return nil, err
	}
	return c.items(env.MediaContainer.Metadata), nil
}

func (c *Client) children(ctx context.Context, ratingKey string) ([]metadataJSON, error) {
	var env mediaContainerEnvelope
	if err := c.getJSON(ctx, "/library/metadata/"+url.PathEscape(ratingKey)+"/children", nil, &env); err != nil {
		return nil, err
	}
	return env.MediaContainer.Metadata, nil
}

func (c *Client) allLeaves(ctx context.Context, ratingKey string) ([]metadataJSON, error) {
	var env mediaContainerEnvelope
	if err := c.getJSON(ctx, "/library/metadata/"+url.PathEscape(ratingKey)+"/allLeaves", nil, &env); err != nil {
		return nil, err
	}
	return env.MediaContainer.Metadata, nil
}

func (c *Client) items(raw []metadataJSON) []identity.Entity {
	out := make([]identity.Entity, 0, len(raw))
	for _, m := range raw {
		if m.RatingKey == "" {
			continue
		}
		out = append(out, newItem(c, m))
	}
	return out
}
