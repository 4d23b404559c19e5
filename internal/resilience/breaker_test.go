package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failingCall() error { return errBoom }
func okCall() error      { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for range 3 {
		if err := b.Execute(failingCall); !errors.Is(err, errBoom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %q, want open", b.State())
	}
	if err := b.Execute(okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	_ = b.Execute(failingCall)
	_ = b.Execute(failingCall)
	if err := b.Execute(okCall); err != nil {
		t.Fatal(err)
	}
	_ = b.Execute(failingCall)
	_ = b.Execute(failingCall)

	if b.State() != StateClosed {
		t.Fatalf("state = %q, want closed", b.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	clock := time.Now()
	b.now = func() time.Time { return clock }

	_ = b.Execute(failingCall)
	if b.State() != StateOpen {
		t.Fatalf("state = %q, want open", b.State())
	}

	// Timeout elapses; the next call probes.
	clock = clock.Add(2 * time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %q, want half_open", b.State())
	}
	if err := b.Execute(okCall); err != nil {
		t.Fatal(err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %q, want closed after probe success", b.State())
	}
}

func TestBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	clock := time.Now()
	b.now = func() time.Time { return clock }

	_ = b.Execute(failingCall)
	clock = clock.Add(2 * time.Minute)

	if err := b.Execute(failingCall); !errors.Is(err, errBoom) {
		t.Fatalf("probe should run, got %v", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %q, want open after probe failure", b.State())
	}
	if err := b.Execute(okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}
