// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Unknown is the kind of errors that carry no category.
	Unknown Kind = "unknown"

	// MissingOperation indicates a request without the required "op" key.
	MissingOperation Kind = "missing_operation"
	// MalformedCriteria indicates an advanced criteria payload that failed to decode.
	MalformedCriteria Kind = "malformed_criteria"
	// InvalidArgument indicates access to an undeclared field or an unusable parameter value.
	InvalidArgument Kind = "invalid_argument"
	// UnknownEntity indicates a request for an entity that is not in the catalog.
	UnknownEntity Kind = "unknown_entity"
	// Unsupported indicates a capability the selected dialect does not offer.
	Unsupported Kind = "unsupported"

	// Connection indicates the database could not be reached or the session was lost.
	Connection Kind = "connection"
	// ResultPending indicates a query was issued while a previous result was still held.
	ResultPending Kind = "result_pending"
	// DuplicateKey indicates a unique or primary key violation.
	DuplicateKey Kind = "duplicate_key"
	// ForeignKey indicates a referential integrity violation.
	ForeignKey Kind = "foreign_key"
	// StaleRow indicates an optimistic concurrency mismatch: the row changed or vanished.
	StaleRow Kind = "stale_row"
	// Query indicates any other statement failure reported by the database.
	Query Kind = "query"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Kinded is implemented by errors that expose a Kind without being an *E,
// such as database errors returned by drivers.
type Kinded interface {
	ErrorKind() Kind
}

// KindOf returns the kind of the first categorized error in err's chain,
// or Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	var k Kinded
	if stderrors.As(err, &k) {
		return k.ErrorKind()
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
