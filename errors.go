package main

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFormFound means the fetched page has no <form> element.
	ErrNoFormFound = errors.New("no form element in document")
	// ErrAmbiguousLookup means a field lookup gave both a name and an id.
	ErrAmbiguousLookup = errors.New("cannot get field by both name and id")
	// ErrFieldNotFound means no field matched the lookup selector.
	ErrFieldNotFound = errors.New("field not found")

	// ErrSessionActive means the user already has a form in progress.
	ErrSessionActive = errors.New("a session is already active for this user")
	// ErrSessionNotFound means there is no form in progress for the user.
	ErrSessionNotFound = errors.New("no active session for this user")
	// ErrSessionComplete means every question already has an answer.
	ErrSessionComplete = errors.New("session has already collected every answer")
)

// FetchError wraps a failure to retrieve or parse the target page.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedTypeError aborts an extraction that hits an input element the
// conversation has no way to collect a value for.
type UnsupportedTypeError struct {
	Type string
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported input type %q on field %q", e.Type, e.Name)
}

// ValidationError reports a rejected answer. The field keeps its prior value.
type ValidationError struct {
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s value: %s", e.Kind, e.Reason)
}

// MergeError reports an attempt to fold together fields that do not belong
// to the same radio group.
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cannot merge fields: %s", e.Reason)
}

// DuplicateFieldError rejects a second field with an already-registered name.
type DuplicateFieldError struct {
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field name %q", e.Name)
}

// UnknownFieldError means a fill named a field the form does not have.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q does not appear in form", e.Name)
}

// MissingFieldError blocks submission while a required field has no value.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required and has not been provided", e.Name)
}

// ClientSubmitError means the endpoint rejected the submission (4xx).
type ClientSubmitError struct {
	Status int
}

func (e *ClientSubmitError) Error() string {
	return fmt.Sprintf("invalid request during form submission (status %d)", e.Status)
}

// ServerSubmitError means the submission did not go through: either the
// endpoint answered 5xx, or the request itself failed (Status 0, Err set).
type ServerSubmitError struct {
	Status int
	Err    error
}

func (e *ServerSubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("form submission failed: %v", e.Err)
	}
	return fmt.Sprintf("internal server error during form submission (status %d)", e.Status)
}

func (e *ServerSubmitError) Unwrap() error { return e.Err }
