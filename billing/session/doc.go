// Package session drives one transaction-edit session: the line item
// store, the debounced calculation sync against the remote calculator,
// offer reconciliation and exclusions, pre-submit validation, and final
// persistence.
//
// Core flow:
//   - user edits mutate the store and mark the session dirty
//   - after the debounce window, the sync snapshots a fingerprint and
//     issues one calculation request
//   - the reconciler merges the response back, guarded by request
//     fencing so a stale response never overwrites newer edits
//   - on save, validation gates the store and the submitter persists
//
// A session is owned by a single cooperative editor; all methods are
// safe for the timer goroutine and the caller to interleave, but there
// is no support for two editors sharing one session.
package session
