package services

import (
	"errors"
	"sort"
	"strings"

	"lemari/internal/repositories"
)

var (
	ErrNotFound          = repositories.ErrNotFound
	ErrInsufficientStock = repositories.ErrInsufficientStock
	ErrOrderExists       = repositories.ErrOrderExists

	// ErrInvalidCredentials is returned for an unknown username or a wrong
	// password; the two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for forged, malformed or revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenNotFound is returned by logout when the caller has no token.
	ErrTokenNotFound = errors.New("token does not exist")
)

// ValidationError reports malformed or out-of-range input, keyed by the
// JSON name of the offending field.
type ValidationError struct {
	// Message summarizes the failure when a single message fits.
	Message string
	Fields  map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records msg for field unless the field already has a message.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
