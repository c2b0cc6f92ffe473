package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeHTTP    ErrorType = "http"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeProcess ErrorType = "process"
	ErrorTypeConfig  ErrorType = "config"
)

// Error represents a typed error with an optional status code and cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FetchError is returned when the status lookup answers with a non-success
// HTTP status.
type FetchError struct {
	StatusCode int
	PostID     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.PostID, e.Reason())
}

// Reason is the ledger text for this failure.
func (e *FetchError) Reason() string {
	return fmt.Sprintf("%d HTTP error", e.StatusCode)
}

// Type returns the error category
func (e *FetchError) Type() ErrorType {
	return ErrorTypeHTTP
}

// TransportError is returned when the request could not complete at all or
// the response body could not be used. Kind defaults to network.
type TransportError struct {
	PostID string
	Kind   ErrorType
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.PostID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Type returns the error category
func (e *TransportError) Type() ErrorType {
	if e.Kind == "" {
		return ErrorTypeNetwork
	}
	return e.Kind
}

// TypeOf returns the category of err. An *Error in the chain wins over the
// typed errors it wraps. Untyped errors yield an empty ErrorType.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	var typed interface{ Type() ErrorType }
	if stderrors.As(err, &typed) {
		return typed.Type()
	}
	return ""
}

// IsClientStatus reports whether a status code is a 4xx
func IsClientStatus(statusCode int) bool {
	return statusCode >= 400 && statusCode < 500
}
