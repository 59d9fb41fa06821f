// Package trakt fetches a user's comments from the Trakt API and converts them
// into review records.
//
// The whole comment history is requested as a single page; movie and show ids
// are rendered in the scheme://value form the Plex library uses so they can
// be matched directly against the identity index.
package trakt
