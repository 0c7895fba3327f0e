// Package errors provides error handling for ionclm.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Classify with one of the sentinels below
//	return errors.Wrapf(errors.ErrDomain, "column %g is not positive", n)
//
//	// Check errors
//	if errors.Is(err, errors.ErrRowParse) {
//	    // report the offending row
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace recorded on err, if any.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Error taxonomy for column-density ingestion.
// Typed errors elsewhere (ion.UnknownError, clm.DuplicateIonError,
// clm.KeyNotFoundError, ixgest.RowParseError) match these with Is().
var (
	// ErrDomain indicates invalid numeric input to column arithmetic
	// (non-positive column, empty combination list, non-finite value).
	ErrDomain = New("domain error")

	// ErrDuplicateIon indicates one ion was inserted twice without pre-aggregation.
	ErrDuplicateIon = New("duplicate ion")

	// ErrKeyNotFound indicates a query for an ion absent from a store.
	ErrKeyNotFound = New("ion not found")

	// ErrRowParse indicates a malformed or unclassifiable raw table row.
	ErrRowParse = New("row parse error")

	// ErrUnknownIon indicates an ion label the lookup does not recognize.
	ErrUnknownIon = New("unknown ion")

	// ErrNotFound indicates a missing resource outside the ion stores
	// (system, source, cached file).
	ErrNotFound = New("not found")
)

// IsDomainError checks if an error is or wraps ErrDomain
func IsDomainError(err error) bool {
	return err != nil && Is(err, ErrDomain)
}

// IsRowParseError checks if an error is or wraps ErrRowParse
func IsRowParseError(err error) bool {
	return err != nil && Is(err, ErrRowParse)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound or ErrKeyNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && (Is(err, ErrNotFound) || Is(err, ErrKeyNotFound))
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}

// NewDomainError creates a domain error with a formatted message
func NewDomainError(format string, args ...interface{}) error {
	return Wrapf(ErrDomain, format, args...)
}
