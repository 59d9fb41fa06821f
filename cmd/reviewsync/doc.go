// Package main hosts the reviewsync CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, sets up per-invocation
// logging, and wires the Trakt source, the Plex library and community
// clients, and the SQLite ledger into a workflow driver. `sync` runs it once
// under the run lock, `watch` runs it on the configured cron schedule, and
// the ledger, doctor, and config commands inspect state without syncing.
package main
