// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import "fmt"

// SyntaxError reports malformed input: an unexpected byte, an unterminated
// string, object, array, comment, or escape sequence, a leading-zero number,
// or any other input that cannot be lexed as JSON (or lenient JSON, when the
// reader is in lenient mode).
type SyntaxError struct {
	Path    string // the reader's path at the point of failure
	Offset  int    // byte offset into the input, or -1 if unknown
	Message string

	err error
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s (offset %d, path %s)", e.Message, e.Offset, e.Path)
	}
	return fmt.Sprintf("%s (path %s)", e.Message, e.Path)
}

// Unwrap supports error wrapping.
func (e *SyntaxError) Unwrap() error { return e.err }

// DataError reports well-formed input that does not have the shape the
// caller asked for: a token-kind mismatch (e.g. NextLong on a string that
// does not parse as an integer), an overflow when narrowing to int or long,
// or a FailOnUnknown violation on SkipName/SkipValue.
type DataError struct {
	Path    string
	Message string

	err error
}

// Error satisfies the error interface.
func (e *DataError) Error() string { return fmt.Sprintf("%s at %s", e.Message, e.Path) }

// Unwrap supports error wrapping.
func (e *DataError) Unwrap() error { return e.err }

// StateError reports misuse of the Reader itself, as opposed to a defect in
// the input: an operation on a closed reader, Close called while a value
// sub-source is still open, a scope stack overflow, or NextSource called on
// a token that is not the start of a value.
type StateError struct {
	Path    string
	Message string
}

// Error satisfies the error interface.
func (e *StateError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Path)
}

func syntaxErrorf(path string, offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Path: path, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func dataErrorf(path string, format string, args ...any) *DataError {
	return &DataError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func stateErrorf(path string, format string, args ...any) *StateError {
	return &StateError{Path: path, Message: fmt.Sprintf(format, args...)}
}
