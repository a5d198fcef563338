package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrNotFound, true},
		{"wrapped once", fmt.Errorf("open ledger: %w", ErrNotFound), true},
		{"wrapped twice", fmt.Errorf("load: %w", fmt.Errorf("open: %w", ErrNotFound)), true},
		{"different error", ErrValidation, false},
		{"nil error", nil, false},
		{"unrelated error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrValidation, true},
		{"wrapped", fmt.Errorf("config: %w", ErrValidation), true},
		{"different error", ErrNotFound, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedgerHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		match error
		other error
	}{
		{"malformed line", IsMalformedLine, ErrMalformedLine, ErrMalformedSpeaker},
		{"malformed continuation", IsMalformedContinuation, ErrMalformedContinuation, ErrMalformedLine},
		{"invalid flags", IsInvalidFlags, ErrInvalidFlags, ErrInvalidJointCode},
		{"invalid joint code", IsInvalidJointCode, ErrInvalidJointCode, ErrInvalidFlags},
		{"malformed speaker", IsMalformedSpeaker, ErrMalformedSpeaker, ErrMalformedLine},
		{"internal", IsInternal, ErrInternal, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.match) {
				t.Errorf("direct match not detected")
			}
			if !tt.check(fmt.Errorf("parse: %w", tt.match)) {
				t.Errorf("wrapped match not detected")
			}
			if tt.check(tt.other) {
				t.Errorf("unexpected match for %v", tt.other)
			}
			if tt.check(nil) {
				t.Errorf("nil should not match")
			}
		})
	}
}
