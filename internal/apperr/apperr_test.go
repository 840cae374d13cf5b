package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("pq: duplicate key")
	err := Wrap(ErrConflict, "This username is already taken.", cause)

	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected error to match ErrConflict")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected error to keep its cause")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("error should not match an unrelated kind")
	}
	if err.Error() != "This username is already taken." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindOfAndMessage(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", New(ErrNotFound, "User not found or role is incorrect."))

	if KindOf(wrapped) != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", KindOf(wrapped))
	}
	if got := Message(wrapped, "fallback"); got != "User not found or role is incorrect." {
		t.Fatalf("unexpected message %q", got)
	}

	plain := errors.New("boom")
	if KindOf(plain) != ErrBackend {
		t.Fatalf("unclassified errors should be ErrBackend, got %v", KindOf(plain))
	}
	if got := Message(plain, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
