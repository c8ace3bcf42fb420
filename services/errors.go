package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies expected business-rule failures so controllers can map
// them to HTTP statuses. Anything that is not a *WorkflowError is treated as a
// persistence fault and surfaced as a generic 500.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindDuplicateVote     ErrorKind = "duplicate_vote"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindNotFound          ErrorKind = "not_found"
)

// WorkflowError is the explicit failure result of a review workflow operation.
// Messages are human readable and safe to return to the caller.
type WorkflowError struct {
	Kind     ErrorKind
	Messages []string
}

func (e *WorkflowError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func newWorkflowError(kind ErrorKind, messages ...string) *WorkflowError {
	return &WorkflowError{Kind: kind, Messages: messages}
}

// ErrValidation reports missing or invalid fields.
func ErrValidation(messages ...string) *WorkflowError {
	return newWorkflowError(KindValidation, messages...)
}

// ErrInvalidTransition names the actual current status so the caller can
// re-read state and inform the actor.
func ErrInvalidTransition(event, currentStatus string) *WorkflowError {
	return newWorkflowError(KindInvalidTransition,
		fmt.Sprintf("cannot %s: application is %s", event, currentStatus))
}

// ErrDuplicateVote reports that the voter already voted on the application.
func ErrDuplicateVote(applicationID, voterID int) *WorkflowError {
	return newWorkflowError(KindDuplicateVote,
		fmt.Sprintf("voter %d has already voted on application %d", voterID, applicationID))
}

// ErrUnauthorized reports a missing capability or ownership relationship.
func ErrUnauthorized(message string) *WorkflowError {
	return newWorkflowError(KindUnauthorized, message)
}

// ErrNotFound reports a missing application or comment.
func ErrNotFound(what string) *WorkflowError {
	return newWorkflowError(KindNotFound, what+" not found")
}

// KindOf extracts the workflow error kind, if err is one.
func KindOf(err error) (ErrorKind, bool) {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a workflow error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
