package monitoring

import (
	"errors"
	"testing"
)

type panicMonitor struct {
	Recorder
	recovered any
}

func (p *panicMonitor) RecoverValue(v any) { p.recovered = v }

func TestCaptureUsesInstalledMonitor(t *testing.T) {
	rec := &Recorder{}
	Init(rec)
	defer Init(nil)

	CaptureException(nil, nil)
	tags := map[string]string{"kind": "admission"}
	CaptureException(errors.New("boom"), tags)
	tags["kind"] = "changed"

	got := rec.Captured()
	if len(got) != 1 {
		t.Fatalf("expected 1 capture got %d", len(got))
	}
	if got[0].Err.Error() != "boom" || got[0].Tags["kind"] != "admission" {
		t.Fatalf("unexpected capture %+v", got[0])
	}
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	pm := &panicMonitor{}
	Init(pm)
	defer Init(nil)

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Fatalf("expected re-panic, got %v", r)
			}
		}()
		defer Recover()
		panic("kaboom")
	}()
	if pm.recovered != "kaboom" {
		t.Fatalf("panic not reported: %v", pm.recovered)
	}
}

func TestInitNilRestoresNop(t *testing.T) {
	Init(&Recorder{})
	Init(nil)
	if _, ok := Current().(NopMonitor); !ok {
		t.Fatalf("expected NopMonitor, got %T", Current())
	}
}
