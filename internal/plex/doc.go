// Package plex talks to a Plex Media Server and to the Plex community API.
//
// Client implements identity.Library over the server's JSON endpoints and
// hands out Items that can walk from a show to its seasons and episodes.
// Submitter posts the createReview GraphQL mutation and reports the outcome
// as a SubmissionResult; Succeeded is the single place that decides whether a
// submission counts as delivered.
package plex
