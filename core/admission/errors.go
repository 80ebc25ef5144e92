package admission

import "fmt"

// AdmissionError reports that the allocator call itself failed. It is fatal
// for the dispatch and never retried.
type AdmissionError struct {
	Server string
	Err    error
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("slot admission failed for %s: %v", e.Server, e.Err)
}

func (e *AdmissionError) Unwrap() error { return e.Err }
