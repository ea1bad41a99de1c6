package domain

import (
	"fmt"
	"strconv"
)

// TransitionErrorKind tags why a status transition was refused.
type TransitionErrorKind int

const (
	TransitionNotFound TransitionErrorKind = iota + 1
	TransitionInvalid
	TransitionCapacityExceeded
)

func (k TransitionErrorKind) String() string {
	switch k {
	case TransitionNotFound:
		return "not_found"
	case TransitionInvalid:
		return "invalid_transition"
	case TransitionCapacityExceeded:
		return "capacity_exceeded"
	default:
		return "unknown"
	}
}

// TransitionError is returned by the transition engine for every refusal.
// Message is user-facing and returned verbatim to API clients.
type TransitionError struct {
	Kind    TransitionErrorKind
	Message string
}

func (e *TransitionError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel matching Kind so callers can use errors.Is.
func (e *TransitionError) Unwrap() error {
	switch e.Kind {
	case TransitionNotFound:
		return ErrNotFound
	case TransitionInvalid:
		return ErrInvalidTransition
	case TransitionCapacityExceeded:
		return ErrCapacityExceeded
	default:
		return nil
	}
}

func NewTaskNotFoundError() *TransitionError {
	return &TransitionError{Kind: TransitionNotFound, Message: "Task not found"}
}

func NewTerminalStatusError() *TransitionError {
	return &TransitionError{
		Kind:    TransitionInvalid,
		Message: "Cannot change status of a " + string(TaskStatusDone) + " task",
	}
}

func NewInvalidTransitionError(from, to TaskStatus) *TransitionError {
	return &TransitionError{
		Kind:    TransitionInvalid,
		Message: fmt.Sprintf("Cannot change status to %s from %s", to, from),
	}
}

func NewCapacityExceededError(status TaskStatus, limit int) *TransitionError {
	return &TransitionError{
		Kind:    TransitionCapacityExceeded,
		Message: "Cannot have more than " + strconv.Itoa(limit) + " tasks with status " + string(status),
	}
}
