package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := NewTypedError(ValidationError, "invalid input", nil)
	if !IsCategory(err, ValidationError) {
		t.Fatalf("expected validation category match")
	}
	if IsCategory(err, NotFoundError) {
		t.Fatalf("expected not-found category mismatch")
	}

	wrapped := errors.New("wrap: " + err.Error())
	if IsCategory(wrapped, ValidationError) {
		t.Fatalf("plain wrapped string error must not match typed category")
	}

	joined := errors.Join(err, errors.New("other"))
	if !IsCategory(joined, ValidationError) {
		t.Fatalf("expected category match through errors.Join")
	}
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	if got := CategoryOf(errors.New("plain")); got != InternalError {
		t.Fatalf("expected InternalError for untyped error, got %s", got)
	}

	err := fmt.Errorf("context: %w", NewTypedError(ExecError, "command failed", nil))
	if got := CategoryOf(err); got != ExecError {
		t.Fatalf("expected ExecError through wrapping, got %s", got)
	}
}

func TestTypedErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 1")
	err := NewTypedError(ExecError, "yunohost app remove failed", cause)
	if err.Error() != "yunohost app remove failed: exit status 1" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}

	bare := NewTypedError(TransportError, "", nil)
	if bare.Error() != string(TransportError) {
		t.Fatalf("expected category fallback, got %q", bare.Error())
	}
}
