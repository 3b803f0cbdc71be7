package errkind

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	base := New(VehicleNotFound, "no such vehicle")
	wrapped := fmt.Errorf("dispatch failed: %w", base)
	if got := KindOf(wrapped); got != VehicleNotFound {
		t.Fatalf("expected KindOf to see through fmt.Errorf wrapping, got %v", got)
	}
}

func TestKindOfDefaultsToInternalForPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != InternalError {
		t.Fatalf("expected an unclassified error to report InternalError, got %v", got)
	}
}

func TestWrapPreservesCauseChain(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(Timeout, "waiting for ack", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Wrap's Unwrap chain to reach the original cause")
	}
	if got := KindOf(err); got != Timeout {
		t.Fatalf("expected Kind Timeout, got %v", got)
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(InvalidArgument, "bad value %d", 42)
	if err.Error() == "" {
		t.Fatalf("expected a non-empty error message")
	}
	if err.Message != "bad value 42" {
		t.Fatalf("expected the formatted message to be stored, got %q", err.Message)
	}
}

func TestZeroKindIsInternalError(t *testing.T) {
	var k Kind
	if k != InternalError {
		t.Fatalf("expected the zero Kind value to be InternalError so unclassified failures never masquerade as a specific kind")
	}
}
