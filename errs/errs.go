// Package errs defines the error taxonomy shared by the reconciliation
// core and the HTTP edge. All of these are terminal for the operation
// that raised them: no partial writes, no silent downgrade.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports a bad caller-supplied value, e.g. an unknown
// attendance status.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SchemaError means the incoming data is missing a required identity
// column. It carries the headers actually seen so the caller can fix the
// sheet.
type SchemaError struct {
	Missing string
	Headers []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column %q (headers: %s)", e.Missing, strings.Join(e.Headers, ", "))
}

// EmptyInputError means the batch had no header row or no data rows.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string { return "no data rows in input" }

// AuthorizationError means a non-admin identity attempted a mutating
// operation.
type AuthorizationError struct {
	Email string
}

func (e *AuthorizationError) Error() string {
	if e.Email == "" {
		return "admin role required"
	}
	return fmt.Sprintf("admin role required, %s is readonly", e.Email)
}

// UpstreamFetchError means the remote sheet export could not be fetched.
type UpstreamFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// HTTPStatus maps a core error to the response code the edge should use.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		se *SchemaError
		ee *EmptyInputError
		ae *AuthorizationError
		ue *UpstreamFetchError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ee):
		return http.StatusBadRequest
	case errors.As(err, &se):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ae):
		return http.StatusForbidden
	case errors.As(err, &ue):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
