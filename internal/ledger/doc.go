// Package ledger persists which remote reviews have already been delivered.
//
// Each row holds a comment ID and the remote update timestamp that was last
// submitted successfully. The sync driver asks NeedsProcessing before doing any
// work for a comment and calls RecordSuccess only after the submission was
// accepted, so an interrupted run leaves delivered reviews recorded and the
// rest eligible for the next run.
//
// The SQLite database is opened and closed around every operation; no
// connection or transaction outlives a single call. Rows are never deleted.
package ledger
