package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/slotgate/core/admission"
)

// AdmissionError is returned when the slot allocator call fails.
type AdmissionError = admission.AdmissionError

// ErrMissingCredential matches *MissingCredentialError with errors.Is.
var ErrMissingCredential = errors.New("no credential available: set a personal token or pass a specific token")

// MissingCredentialError is returned before any network call when neither
// an override nor a personal token is available.
type MissingCredentialError struct{}

func (*MissingCredentialError) Error() string { return ErrMissingCredential.Error() }

func (*MissingCredentialError) Is(target error) bool { return target == ErrMissingCredential }

// RemoteCallError is a failed HTTP attempt: a non-2xx status, a transport
// failure (Status 0) or an undecodable body.
type RemoteCallError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteCallError) Error() string { return e.Message }

func (e *RemoteCallError) Unwrap() error { return e.Err }

// ExhaustedCredentialsError is returned when every attempted credential
// failed. Its message is the last attempt's message.
type ExhaustedCredentialsError struct {
	Last     error
	Attempts int
}

func (e *ExhaustedCredentialsError) Error() string {
	if e.Last == nil {
		return "all credentials failed"
	}
	return e.Last.Error()
}

func (e *ExhaustedCredentialsError) Unwrap() error { return e.Last }

func remoteStatusError(status int, msg string) *RemoteCallError {
	if msg == "" {
		msg = fmt.Sprintf("call failed with status %d", status)
	}
	return &RemoteCallError{Status: status, Message: msg}
}

// Kind returns a stable label for err, used in metrics and monitoring tags.
func Kind(err error) string {
	var (
		adm *AdmissionError
		exh *ExhaustedCredentialsError
		rem *RemoteCallError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &adm):
		return "admission"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.As(err, &exh):
		return "exhausted"
	case errors.As(err, &rem):
		return "remote_call"
	default:
		return "unknown"
	}
}
