package services

import (
	"fmt"
	"strings"
	"testing"
)

func TestWorkflowErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{ErrValidation("field missing"), KindValidation},
		{ErrInvalidTransition(EventApprove, "rejected"), KindInvalidTransition},
		{ErrDuplicateVote(7, 42), KindDuplicateVote},
		{ErrUnauthorized("nope"), KindUnauthorized},
		{ErrNotFound("application"), KindNotFound},
	}

	for _, tc := range cases {
		kind, ok := KindOf(tc.err)
		if !ok || kind != tc.want {
			t.Errorf("KindOf(%v) = %v/%v, want %v", tc.err, kind, ok, tc.want)
		}
		if !IsKind(tc.err, tc.want) {
			t.Errorf("IsKind(%v, %v) = false", tc.err, tc.want)
		}
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("casting vote: %w", ErrDuplicateVote(7, 42))
	if !IsKind(wrapped, KindDuplicateVote) {
		t.Fatal("kind must be detectable through wrapping")
	}
}

func TestErrorMessagesAreActionable(t *testing.T) {
	err := ErrInvalidTransition(EventApprove, "rejected")
	if !strings.Contains(err.Error(), "rejected") {
		t.Fatalf("transition error must name the actual state: %q", err.Error())
	}

	err = ErrValidation("name required", "email required")
	if !strings.Contains(err.Error(), "name required") || !strings.Contains(err.Error(), "email required") {
		t.Fatalf("validation error must keep all messages: %q", err.Error())
	}
}

func TestKindOfPlainError(t *testing.T) {
	if _, ok := KindOf(fmt.Errorf("database gone")); ok {
		t.Fatal("plain errors must not map to a workflow kind")
	}
}
