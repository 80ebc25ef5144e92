package events

import (
	"time"

	"github.com/kilianp07/slotgate/core/model"
)

// AttemptEvent is published after every HTTP attempt.
type AttemptEvent struct {
	DispatchID string
	Operation  string
	Endpoint   string
	Origin     model.Origin
	StatusCode int
	Err        error
	Latency    time.Duration
}
