// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hunk

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error]. Callers match on the kind, either with [KindOf] or
// with [errors.Is] against one of the sentinel values like [ErrTruncatedHunk].
type Kind int

const (
	// KindIOFailure is an error of the underlying byte source.
	KindIOFailure Kind = iota + 1

	// KindNotAHunkStream means the first identifier of the input is not a known hunk code.
	KindNotAHunkStream

	// KindTruncatedHunk means the input ended before a declared length was satisfied.
	KindTruncatedHunk

	// KindUnsupportedHunkKind means a hunk kind the decoder cannot handle was found mid-stream.
	KindUnsupportedHunkKind

	// KindMalformedHunk means a hunk is internally inconsistent, e.g. a header table
	// whose slots do not fit its size.
	KindMalformedHunk

	// KindMalformedVersionString means a version tag does not match the tag grammar.
	KindMalformedVersionString

	// KindLimitExceeded means a configured resource limit was hit.
	KindLimitExceeded
)

var kindNames = map[Kind]string{
	KindIOFailure:              "i/o failure",
	KindNotAHunkStream:         "not a hunk stream",
	KindTruncatedHunk:          "truncated hunk",
	KindUnsupportedHunkKind:    "unsupported hunk kind",
	KindMalformedHunk:          "malformed hunk",
	KindMalformedVersionString: "malformed version string",
	KindLimitExceeded:          "limit exceeded",
}

// String returns a human readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by the decoder, the version parser and the
// inspection pipeline.
type Error struct {
	Kind Kind   // classification
	Msg  string // context, e.g. the offending hunk
	Err  error  // underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinel errors for use with [errors.Is].
var (
	ErrIOFailure              = &Error{Kind: KindIOFailure}
	ErrNotAHunkStream         = &Error{Kind: KindNotAHunkStream}
	ErrTruncatedHunk          = &Error{Kind: KindTruncatedHunk}
	ErrUnsupportedHunkKind    = &Error{Kind: KindUnsupportedHunkKind}
	ErrMalformedHunk          = &Error{Kind: KindMalformedHunk}
	ErrMalformedVersionString = &Error{Kind: KindMalformedVersionString}
	ErrLimitExceeded          = &Error{Kind: KindLimitExceeded}
)

// KindOf returns the kind of the first [Error] in err's chain, or 0 if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
