// Package monitoring is the process-wide error reporting hook. Terminal
// dispatch failures and recovered panics are sent to the installed Monitor.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor restores the
// no-op monitor.
func Init(m Monitor) {
	if m == nil {
		m = NopMonitor{}
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

// Current returns the installed monitor.
func Current() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	Current().CaptureException(err, tags)
}

// Recover captures panics in goroutines. It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		if rm, ok := Current().(PanicRecorder); ok {
			rm.RecoverValue(r)
		}
		panic(r)
	}
}

// PanicRecorder is implemented by monitors that report recovered values.
type PanicRecorder interface {
	RecoverValue(v any)
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	Current().Flush(d)
}

// Captured is one exception seen by a Recorder.
type Captured struct {
	Err  error
	Tags map[string]string
}

// Recorder keeps captured exceptions in memory. It is used in tests and by
// the CLI when no DSN is configured.
type Recorder struct {
	mu       sync.Mutex
	captured []Captured
}

func (r *Recorder) CaptureException(err error, tags map[string]string) {
	cp := make(map[string]string, len(tags))
	for k, v := range tags {
		cp[k] = v
	}
	r.mu.Lock()
	r.captured = append(r.captured, Captured{Err: err, Tags: cp})
	r.mu.Unlock()
}

func (r *Recorder) Flush(time.Duration) {}

// Captured returns a copy of the recorded exceptions.
func (r *Recorder) Captured() []Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Captured(nil), r.captured...)
}
