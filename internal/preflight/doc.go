// Package preflight provides readiness checks for the services and paths
// that reviewsync depends on.
//
// `reviewsync doctor` runs RunAll and prints one line per check. The checks
// never write: the Plex server and Trakt are probed with read-only requests,
// the community endpoint is only validated, and the ledger is inspected
// without being created.
package preflight
