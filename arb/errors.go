// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package arb

import "fmt"

// ErrorKind categorizes translation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedFeature indicates an instruction or operand the ARB
	// program models cannot express.
	ErrUnsupportedFeature ErrorKind = iota

	// ErrUnsupportedVersion indicates a shader version with no ARB target.
	ErrUnsupportedVersion

	// ErrInvalidProgram indicates the decoded program is malformed.
	ErrInvalidProgram

	// ErrInvalidText indicates program text that fails Validate.
	ErrInvalidText
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrInvalidProgram:
		return "InvalidProgram"
	case ErrInvalidText:
		return "InvalidText"
	default:
		return "Unknown"
	}
}

// Span locates an error in the source: word offsets for bytecode, line
// numbers for program text.
type Span struct {
	Start uint32
	End   uint32
}

// Error represents a translation error.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    *Span
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("arb %s at [%d:%d]: %s", e.Kind, e.Span.Start, e.Span.End, e.Message)
	}
	return fmt.Sprintf("arb %s: %s", e.Kind, e.Message)
}

// NewError creates an error without span information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewErrorWithSpan creates an error located at [start:end].
func NewErrorWithSpan(kind ErrorKind, message string, start, end uint32) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Span:    &Span{Start: start, End: end},
	}
}

// IsUnsupportedFeature returns true if the error is ErrUnsupportedFeature.
func (e *Error) IsUnsupportedFeature() bool {
	return e.Kind == ErrUnsupportedFeature
}

// IsInvalidText returns true if the error is ErrInvalidText.
func (e *Error) IsInvalidText() bool {
	return e.Kind == ErrInvalidText
}
