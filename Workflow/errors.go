package Workflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a workflow operation was refused. Operations fail
// closed: when an Error is returned nothing was committed.
type ErrorKind string

const (
	KindInvalidTransition   ErrorKind = "INVALID_TRANSITION"
	KindIncompleteInput     ErrorKind = "INCOMPLETE_INPUT"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindAlreadyProcessed    ErrorKind = "ALREADY_PROCESSED"
	KindInconsistentBalance ErrorKind = "INCONSISTENT_BALANCE"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func ErrIncompleteInput(format string, args ...interface{}) *Error {
	return newError(KindIncompleteInput, format, args...)
}

func ErrNotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func ErrAlreadyProcessed(format string, args ...interface{}) *Error {
	return newError(KindAlreadyProcessed, format, args...)
}

func ErrInconsistentBalance(format string, args ...interface{}) *Error {
	return newError(KindInconsistentBalance, format, args...)
}

// KindOf returns the workflow error kind, or "" for non-workflow errors.
func KindOf(err error) ErrorKind {
	var wErr *Error
	if errors.As(err, &wErr) {
		return wErr.Kind
	}
	return ""
}
