package model

import (
	"fmt"
	"time"
)

// LogStatus is the outcome recorded for a log entry.
type LogStatus int

const (
	LogSuccess LogStatus = iota
	LogError
)

func (s LogStatus) String() string {
	if s == LogError {
		return "Error"
	}
	return "Success"
}

// ParseLogStatus converts "Success" or "Error" (any case) to a LogStatus.
func ParseLogStatus(s string) (LogStatus, error) {
	switch s {
	case "Success", "success", "SUCCESS":
		return LogSuccess, nil
	case "Error", "error", "ERROR":
		return LogError, nil
	}
	return 0, fmt.Errorf("unknown log status %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s LogStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LogStatus) UnmarshalText(b []byte) error {
	v, err := ParseLogStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// LogEntry records one dispatch attempt or a final failure.
type LogEntry struct {
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	DispatchID       string    `json:"dispatch_id" yaml:"dispatch_id"`
	Operation        string    `json:"operation" yaml:"operation"`
	Endpoint         string    `json:"endpoint" yaml:"endpoint"`
	Model            string    `json:"model" yaml:"model"`
	Prompt           string    `json:"prompt" yaml:"prompt"`
	Output           string    `json:"output" yaml:"output"`
	TokenCount       int       `json:"token_count" yaml:"token_count"`
	Status           LogStatus `json:"status" yaml:"status"`
	Error            string    `json:"error,omitempty" yaml:"error,omitempty"`
	Origin           string    `json:"origin,omitempty" yaml:"origin,omitempty"`
	CredentialSuffix string    `json:"credential_suffix,omitempty" yaml:"credential_suffix,omitempty"`
}
