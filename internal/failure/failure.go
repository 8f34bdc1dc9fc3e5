// Package failure holds the error taxonomy shared by the generation
// pipeline. Every failure that can end a workflow run is an *Error with a
// Kind, so hosts can branch on the category without string matching.
package failure

import (
	"errors"
	"strings"
)

// Kind categorizes a pipeline failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindValidation indicates a malformed request or configuration.
	KindValidation
	// KindAuth indicates the credential was rejected by the service.
	KindAuth
	// KindTransient indicates a network-level failure talking to the service.
	KindTransient
	// KindGeneration indicates the service reported a failed or empty job.
	KindGeneration
	// KindFetch indicates the finished asset could not be downloaded.
	KindFetch
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransient:
		return "transient"
	case KindGeneration:
		return "generation"
	case KindFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// CredentialNotFound is the service message that signals an expired or
// revoked key selection.
const CredentialNotFound = "Requested entity was not found"

// Error is a categorized pipeline failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, err error) *Error { return New(KindValidation, message, err) }
func Auth(message string, err error) *Error       { return New(KindAuth, message, err) }
func Transient(message string, err error) *Error  { return New(KindTransient, message, err) }
func Generation(message string) *Error            { return New(KindGeneration, message, nil) }
func Fetch(message string, err error) *Error      { return New(KindFetch, message, err) }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// SuggestsReauth reports whether the error text carries the credential
// invalidity marker returned by the service.
func SuggestsReauth(err error) bool {
	return err != nil && strings.Contains(err.Error(), CredentialNotFound)
}
