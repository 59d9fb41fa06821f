// Package services defines shared utilities consumed by the sync driver and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, comment IDs, driver phases, and
//     target types for logging.
//   - Structured error markers plus the Wrap helper so every failed review is
//     reported with a stable error kind (transport, resolution, rejection,
//     persistence).
//
// Use these helpers when wiring new integration code so failure reporting
// stays uniform across the pipeline.
package services
