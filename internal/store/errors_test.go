package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{NotFoundError("appointment not found"), KindNotFound},
		{ForbiddenError("not the owner"), KindForbidden},
		{ConflictError("already exists"), KindConflict},
		{ValidationError("start time in the past"), KindValidation},
		{InternalError("query failed", errors.New("boom")), KindInternal},
		{errors.New("plain error"), KindInternal},
		{fmt.Errorf("wrapped: %w", ForbiddenError("nope")), KindForbidden},
	}

	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Fatalf("KindOf(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestIsHelpers(t *testing.T) {
	if !IsNotFound(NotFoundError("x")) {
		t.Fatal("IsNotFound should match a not-found error")
	}
	if IsNotFound(ForbiddenError("x")) {
		t.Fatal("IsNotFound should not match a forbidden error")
	}
	if !IsForbidden(ForbiddenError("x")) {
		t.Fatal("IsForbidden should match a forbidden error")
	}
}

func TestInternalErrorUnwrap(t *testing.T) {
	cause := errors.New("driver gone away")
	err := InternalError("query failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Message() != "query failed" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}
