package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failingCalls(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		cb.Execute(func() error { return errBoom })
	}
}

func TestOpensAfterFailureThreshold(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 3)

	if err := cb.Execute(func() error { return nil }); err != ErrCircuitBreakerOpen {
		t.Fatalf("expected ErrCircuitBreakerOpen, got %v", err)
	}
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("expected StateOpen, got %v", got)
	}
}

func TestStaysClosedUnderThreshold(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig())

	failingCalls(cb, 4)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected call to pass, got %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("expected StateClosed, got %v", got)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 2)
	cb.Execute(func() error { return nil })
	failingCalls(cb, 2)

	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("expected StateClosed after interleaved success, got %v", got)
	}
}

func TestHalfOpenAfterTimeoutThenCloses(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    1,
		SuccessThreshold:    1,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 1)
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("expected StateOpen, got %v", got)
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected closed breaker to pass, got %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("expected StateClosed after successful probe, got %v", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 1)
	time.Sleep(20 * time.Millisecond)
	failingCalls(cb, 1)

	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("expected StateOpen after failed probe, got %v", got)
	}
}

func TestReset(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    1,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 1)
	cb.Reset()

	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("expected StateClosed after reset, got %v", got)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected call to pass after reset, got %v", err)
	}
}
