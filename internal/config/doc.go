// Package config loads, normalizes, and validates reviewsync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLEX_TOKEN, TRAKT_CLIENT_ID and LOG_FOLDER. The Config type centralizes the
// Plex and Trakt credentials, the ledger location, and sync tuning so the CLI
// and the sync driver discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
