// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"

	"github.com/gogpu/mpvtex"
)

// Error codes.
const (
	CodeBadArgs         = "bad_args"
	CodeNotFound        = "not_found"
	CodeNotImplemented  = "not_implemented"
	CodeInitFailed      = "init_failed"
	CodeOpenFailed      = "open_failed"
	CodeOperationFailed = "operation_failed"
	CodeClosed          = "closed"
)

// Error is a failed operation with a stable code and a human-readable
// message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return "dispatch: " + e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badArgs(msg string) *Error {
	return &Error{Code: CodeBadArgs, Message: msg}
}

// opError classifies an error returned by a session.
func opError(code string, err error) *Error {
	if errors.Is(err, mpvtex.ErrClosed) {
		code = CodeClosed
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// CodeOf returns the code of a dispatch error, or "" for other errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
