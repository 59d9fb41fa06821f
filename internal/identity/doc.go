// Package identity maps remote review targets onto local library items.
//
// An Index is built from a full scan of the movie and show sections of a
// Library and keyed by every external identifier (imdb://, tmdb://, tvdb://)
// plus each item's own GUID. Lazy defers that scan until a run actually has a
// review to resolve. Resolve then looks up the movie or show and, for season
// and episode reviews, navigates down to the child item.
package identity
