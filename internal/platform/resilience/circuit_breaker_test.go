package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail() error { return errBoom }
func succeed() error { return nil }

type transition struct{ from, to CircuitState }

func newTestBreaker(now *time.Time, changes *[]transition) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	},
		WithClock(func() time.Time { return *now }),
		WithStateChange(func(from, to CircuitState) { *changes = append(*changes, transition{from, to}) }),
	)
}

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	var changes []transition
	b := newTestBreaker(&now, &changes)

	if err := b.Do(fail, nil); !errors.Is(err, errBoom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after one failure, got %s", b.State())
	}
	_ = b.Do(fail, nil)
	if b.State() != CircuitStateOpen {
		t.Fatalf("expected open at threshold, got %s", b.State())
	}

	called := false
	if err := b.Do(func() error { called = true; return nil }, nil); !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected rejection without calling fn, err=%v called=%v", err, called)
	}

	now = now.Add(6 * time.Second)
	if b.State() != CircuitStateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", b.State())
	}
	if err := b.Do(succeed, nil); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}

	want := []transition{
		{CircuitStateClosed, CircuitStateOpen},
		{CircuitStateOpen, CircuitStateHalfOpen},
		{CircuitStateHalfOpen, CircuitStateClosed},
	}
	if len(changes) != len(want) {
		t.Fatalf("unexpected transitions: %+v", changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("transition %d: got %+v want %+v", i, changes[i], want[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	var changes []transition
	b := newTestBreaker(&now, &changes)

	_ = b.Do(fail, nil)
	_ = b.Do(fail, nil)
	now = now.Add(6 * time.Second)

	if err := b.Do(fail, nil); !errors.Is(err, errBoom) {
		t.Fatalf("expected probe to run and fail, got %v", err)
	}
	if b.State() != CircuitStateOpen {
		t.Fatalf("expected reopened circuit, got %s", b.State())
	}
	if err := b.Do(succeed, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit to reject until the timeout restarts, got %v", err)
	}
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	var changes []transition
	b := newTestBreaker(&now, &changes)

	onlyBoom := func(err error) bool { return errors.Is(err, errBoom) }
	rejected := errors.New("token rejected")
	for i := 0; i < 5; i++ {
		if err := b.Do(func() error { return rejected }, onlyBoom); !errors.Is(err, rejected) {
			t.Fatalf("expected caller error passthrough, got %v", err)
		}
	}
	if b.State() != CircuitStateClosed || len(changes) != 0 {
		t.Fatalf("expected closed circuit, got %s with %+v", b.State(), changes)
	}
}

func TestCircuitBreakerConfig_Normalized(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true}.normalized()
	want := DefaultCircuitBreakerConfig()
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
