package domain

import "fmt"

// Error types for consistent error handling across the review engine.
// Core errors are logic/data errors: they propagate synchronously, are
// never retried, and are never fatal to the hosting process.

// ErrInvalidProfile indicates a malformed or out-of-range profile field.
// The derive call that saw it is non-recoverable.
type ErrInvalidProfile struct {
	Field   string
	Message string
}

func (e *ErrInvalidProfile) Error() string {
	return fmt.Sprintf("invalid profile field '%s': %s", e.Field, e.Message)
}

// ErrInvalidDocumentData indicates a missing or non-finite required
// aggregate on one document. It is scoped to that document's checks and
// must not abort sibling documents.
type ErrInvalidDocumentData struct {
	Document DocumentKind
	Field    string
	Message  string
}

func (e *ErrInvalidDocumentData) Error() string {
	return fmt.Sprintf("invalid document data [%s] field '%s': %s", e.Document, e.Field, e.Message)
}

// ErrUnsupportedDocumentType indicates the caller passed a document kind
// the validator does not recognize.
type ErrUnsupportedDocumentType struct {
	Kind DocumentKind
}

func (e *ErrUnsupportedDocumentType) Error() string {
	return fmt.Sprintf("unsupported document type: %s", e.Kind)
}

// ErrReferenceDataMissing indicates a reference-table miss for a required
// threshold. Derivation fails closed: a missing threshold means
// applicability cannot be determined, never that it does not apply.
type ErrReferenceDataMissing struct {
	Category string
	Key      string
}

func (e *ErrReferenceDataMissing) Error() string {
	return fmt.Sprintf("reference data missing: %s/%s", e.Category, e.Key)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a bad request payload at the shell boundary.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a state conflict, e.g. reviewing a client whose
// profile changed mid-cycle.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}
