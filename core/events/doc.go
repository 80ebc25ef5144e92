// Package events defines the dispatch events emitted on the event bus.
//
// Available event types:
//   - StatusEvent: progress message for a dispatch (queued, retrying, ...)
//   - AttemptEvent: outcome of one HTTP attempt
//   - FallbackSignal: the personal credential was rejected
package events
