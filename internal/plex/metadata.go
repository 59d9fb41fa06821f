package plex

import (
	"fmt"
	"strings"
)

const plexGUIDScheme = "plex://"

// MetadataID returns the identifier the community API expects for an item,
// which is the part of its GUID after plex://<type>/. Items matched by a
// legacy agent have no such GUID and cannot be reviewed.
func MetadataID(guid string) (string, error) {
	guid = strings.TrimSpace(guid)
	rest, ok := strings.CutPrefix(guid, plexGUIDScheme)
	if !ok {
		return "", fmt.Errorf("guid %q is not a plex:// identifier", guid)
	}
	kind, id, ok := strings.Cut(rest, "/")
	if !ok || kind == "" || strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("guid %q has no metadata id", guid)
	}
	return id, nil
}
