package admission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/slotgate/core/model"
)

type scriptedAllocator struct {
	mu      sync.Mutex
	answers []bool
	err     error
	calls   []model.SlotRequest
}

func (s *scriptedAllocator) AcquireSlot(_ context.Context, req model.SlotRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return false, s.err
	}
	if len(s.answers) == 0 {
		return true, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func newTestGate(alloc Allocator) (*Gate, *[]time.Duration) {
	ResetMetrics(prometheus.NewRegistry())
	g := NewGate(alloc, 0, nil)
	var waits []time.Duration
	g.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return g, &waits
}

func TestGateGrantsAfterBusyPolls(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7} {
		answers := make([]bool, n)
		alloc := &scriptedAllocator{answers: append(answers, true)}
		g, waits := newTestGate(alloc)
		var statuses []string
		err := g.Acquire(context.Background(), "https://gen.example.com", 45, func(s string) { statuses = append(statuses, s) })
		if err != nil {
			t.Fatalf("n=%d: acquire: %v", n, err)
		}
		if len(alloc.calls) != n+1 {
			t.Fatalf("n=%d: expected %d allocator calls got %d", n, n+1, len(alloc.calls))
		}
		if len(*waits) != n {
			t.Fatalf("n=%d: expected %d waits got %d", n, n, len(*waits))
		}
		for _, d := range *waits {
			if d != DefaultRetryDelay {
				t.Fatalf("n=%d: unexpected delay %s", n, d)
			}
		}
		for _, c := range alloc.calls {
			if c.ServerURL != "https://gen.example.com" || c.CooldownSeconds != 45 {
				t.Fatalf("unexpected slot request %#v", c)
			}
		}
		if statuses[0] != model.StatusQueued || statuses[len(statuses)-1] != model.StatusAcquired {
			t.Fatalf("n=%d: unexpected statuses %v", n, statuses)
		}
		if got := len(statuses); got != n+2 {
			t.Fatalf("n=%d: expected %d statuses got %d", n, n+2, got)
		}
		if got := testutil.ToFloat64(admissionPolls.WithLabelValues("https://gen.example.com", "busy")); got != float64(n) {
			t.Fatalf("n=%d: busy polls metric %v", n, got)
		}
	}
}

func TestGateAllocatorErrorIsFatal(t *testing.T) {
	boom := errors.New("database unavailable")
	alloc := &scriptedAllocator{err: boom}
	g, waits := newTestGate(alloc)
	var statuses []string
	err := g.Acquire(context.Background(), "https://gen.example.com", 60, func(s string) { statuses = append(statuses, s) })
	var ae *AdmissionError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AdmissionError got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if len(alloc.calls) != 1 || len(*waits) != 0 {
		t.Fatalf("allocator errors must not be retried: calls=%d waits=%d", len(alloc.calls), len(*waits))
	}
	if statuses[len(statuses)-1] != model.StatusCleared {
		t.Fatalf("expected cleared status, got %v", statuses)
	}
}

func TestGateWaitHonoursContext(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	alloc := AllocatorFunc(func(context.Context, model.SlotRequest) (bool, error) { return false, nil })
	g := NewGate(alloc, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Acquire(ctx, "srv", 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
}

func TestGateRealSleep(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	calls := 0
	alloc := AllocatorFunc(func(context.Context, model.SlotRequest) (bool, error) {
		calls++
		return calls > 1, nil
	})
	g := NewGate(alloc, 10*time.Millisecond, nil)
	start := time.Now()
	if err := g.Acquire(context.Background(), "srv", 1, nil); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("gate did not wait between polls")
	}
}
