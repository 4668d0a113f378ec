package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrInvalidURL is returned when a detail URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

// ErrorClass represents a classification of transport failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a success response with an unreadable body.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError is a PokeAPI transport failure with additional context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("PokeAPI %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("PokeAPI %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassOf returns the ErrorClass of err if it wraps an *APIError, or "" otherwise.
func ClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ""
}
