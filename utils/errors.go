package utils

import (
	"errors"
	"fmt"
)

// Error codes returned to API callers alongside the http status, so clients
// can branch without string matching.
const (
	ErrorTokenAuthFail   = 401001
	ErrorNotFound        = 404001
	ErrorValidation      = 400001
	ErrorConflict        = 409001
	ErrorAnalyzeFail     = 502001
	ErrorInternalFailure = 500001
)

/*

Typed domain errors shared by all components.

NotFoundError: a referenced entry/user does not exist.
ValidationError: an empty/missing required field, rejected before any
external or persistence call is made.
ConflictError: a uniqueness violation, e.g. duplicate follow.
InferenceParseError: the language-inference collaborator returned output
that does not conform to the expected structure. Fatal to analyze.
CollaboratorUnavailableError: network/timeout failure talking to an external
collaborator. Fatal during inference, absorbed during enrichment.

*/

type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Id)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

type InferenceParseError struct {
	Raw string
	Err error
}

func (e *InferenceParseError) Error() string {
	return fmt.Sprintf("inference output not parseable: %v", e.Err)
}

func (e *InferenceParseError) Unwrap() error { return e.Err }

type CollaboratorUnavailableError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("%s collaborator unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorUnavailableError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsInferenceParse(err error) bool {
	var e *InferenceParseError
	return errors.As(err, &e)
}

func IsCollaboratorUnavailable(err error) bool {
	var e *CollaboratorUnavailableError
	return errors.As(err, &e)
}
