// Package workflow runs one synchronization pass from Trakt reviews to Plex.
//
// A Driver walks a run through its phases: fetching the remote review list,
// filtering it against the ledger, building the library identity index when
// at least one review is new or changed, and submitting each candidate in
// order. Every per-review failure is logged once as a classified warning and
// the run moves on; only a successful submission advances the ledger.
//
// The daemon and the CLI both drive runs through this package; add new run
// behaviour here rather than in the command layer.
package workflow
