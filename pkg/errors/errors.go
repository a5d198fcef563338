// Package errors provides the domain error types for tmsledger.
//
// This package defines sentinel errors for the conditions that abort a ledger
// load, plus a couple of general ones used by the CLI. Every error returned by
// the parser and the speaker decoder wraps one of these sentinels, so callers
// can branch with errors.Is() or the IsXxx helpers.
//
// Usage:
//
//	import lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
//
//	// Check for a ledger error
//	if lerrors.IsMalformedSpeaker(err) {
//	    // fix the speaker column
//	}
package errors

import "errors"

// General errors.
var (
	// ErrNotFound indicates the requested file or record was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid configuration or arguments.
	ErrValidation = errors.New("validation error")
)

// Ledger errors. All of them are fatal: a load that hits one produces no
// meetings at all.
var (
	// ErrMalformedLine indicates a line that does not fit the column grammar.
	ErrMalformedLine = errors.New("malformed line")

	// ErrMalformedContinuation indicates a continuation line carrying fields
	// that only a meeting's first line may carry.
	ErrMalformedContinuation = errors.New("malformed continuation line")

	// ErrInvalidFlags indicates a flag character outside the known alphabet.
	ErrInvalidFlags = errors.New("invalid flags")

	// ErrInvalidJointCode indicates a joint society code missing from the registry.
	ErrInvalidJointCode = errors.New("invalid joint code")

	// ErrMalformedSpeaker indicates a speaker string that does not reduce to
	// honorific, initials, surname and role.
	ErrMalformedSpeaker = errors.New("malformed speaker")

	// ErrInternal indicates a broken internal invariant.
	ErrInternal = errors.New("internal consistency error")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsMalformedLine reports whether any error in err's chain is ErrMalformedLine.
func IsMalformedLine(err error) bool {
	return errors.Is(err, ErrMalformedLine)
}

// IsMalformedContinuation reports whether any error in err's chain is ErrMalformedContinuation.
func IsMalformedContinuation(err error) bool {
	return errors.Is(err, ErrMalformedContinuation)
}

// IsInvalidFlags reports whether any error in err's chain is ErrInvalidFlags.
func IsInvalidFlags(err error) bool {
	return errors.Is(err, ErrInvalidFlags)
}

// IsInvalidJointCode reports whether any error in err's chain is ErrInvalidJointCode.
func IsInvalidJointCode(err error) bool {
	return errors.Is(err, ErrInvalidJointCode)
}

// IsMalformedSpeaker reports whether any error in err's chain is ErrMalformedSpeaker.
func IsMalformedSpeaker(err error) bool {
	return errors.Is(err, ErrMalformedSpeaker)
}

// IsInternal reports whether any error in err's chain is ErrInternal.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
