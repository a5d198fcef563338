package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a classified ledger error.
type ErrorCode string

const (
	CodeMalformedLine         ErrorCode = "malformed_line"
	CodeMalformedContinuation ErrorCode = "malformed_continuation"
	CodeInvalidFlags          ErrorCode = "invalid_flags"
	CodeInvalidJointCode      ErrorCode = "invalid_joint_code"
	CodeMalformedSpeaker      ErrorCode = "malformed_speaker"
	CodeInternal              ErrorCode = "internal_error"
	CodeCancelled             ErrorCode = "cancelled"
	CodeNotFound              ErrorCode = "not_found"
	CodeProcessing            ErrorCode = "processing_error"
)

// sentinels maps codes to the sentinel a LedgerError unwraps to.
var sentinels = map[ErrorCode]error{
	CodeMalformedLine:         ErrMalformedLine,
	CodeMalformedContinuation: ErrMalformedContinuation,
	CodeInvalidFlags:          ErrInvalidFlags,
	CodeInvalidJointCode:      ErrInvalidJointCode,
	CodeMalformedSpeaker:      ErrMalformedSpeaker,
	CodeInternal:              ErrInternal,
	CodeCancelled:             context.Canceled,
	CodeNotFound:              ErrNotFound,
}

// Sentinel returns the sentinel error for the code, or nil if it has none.
func (c ErrorCode) Sentinel() error {
	return sentinels[c]
}

// LedgerError is a structured error for a ledger line that failed to load.
// Line is 1-based; zero means the error is not tied to a line.
type LedgerError struct {
	Code    ErrorCode
	Line    int
	Text    string
	Message string
	Cause   error
}

// NewLineError builds a LedgerError for the given input line.
func NewLineError(code ErrorCode, line int, text, format string, args ...interface{}) *LedgerError {
	return &LedgerError{
		Code:    code,
		Line:    line,
		Text:    text,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *LedgerError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	} else if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s: %q", e.Line, e.Code, msg, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap exposes both the code's sentinel and the underlying cause, so
// errors.Is works against either.
func (e *LedgerError) Unwrap() []error {
	var errs []error
	if s := e.Code.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WithCause returns e with Cause set.
func (e *LedgerError) WithCause(err error) *LedgerError {
	e.Cause = err
	return e
}

// ClassifyError inspects an error and returns a *LedgerError with the
// appropriate code. An error that already is a *LedgerError is returned as is.
// Unknown errors are classified as CodeProcessing.
func ClassifyError(err error) *LedgerError {
	if err == nil {
		return nil
	}

	var le *LedgerError
	if errors.As(err, &le) {
		return le
	}

	for _, code := range []ErrorCode{
		CodeMalformedLine,
		CodeMalformedContinuation,
		CodeInvalidFlags,
		CodeInvalidJointCode,
		CodeMalformedSpeaker,
		CodeInternal,
		CodeCancelled,
		CodeNotFound,
	} {
		if errors.Is(err, code.Sentinel()) {
			return &LedgerError{Code: code, Cause: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &LedgerError{Code: CodeCancelled, Cause: err}
	}

	return &LedgerError{Code: CodeProcessing, Cause: err}
}

// CodeOf returns the classified code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return ClassifyError(err).Code
}
