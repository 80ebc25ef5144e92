package model

import "fmt"

// Progress messages passed to status callbacks.
const (
	StatusQueued   = "Waiting in queue for a free server slot..."
	StatusRetrying = "Server busy, retrying shortly..."
	StatusAcquired = "Server slot acquired"
	StatusCleared  = ""
)

// StatusAttempting returns the message emitted before an HTTP attempt.
func StatusAttempting(o Origin) string {
	return fmt.Sprintf("Attempting with %s...", o.Kind())
}
