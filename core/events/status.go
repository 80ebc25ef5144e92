package events

// StatusEvent mirrors a status callback invocation.
type StatusEvent struct {
	DispatchID string
	Operation  string
	Status     string
}
