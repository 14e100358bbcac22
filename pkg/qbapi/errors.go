package qbapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError represents an error body returned by the Quickbase API.
type APIError struct {
	Message     string `json:"message"     yaml:"message"`
	Description string `json:"description" yaml:"description"`
	StatusCode  int    `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s: %s (status: %d)", e.Message, e.Description, e.StatusCode)
}

// ParseAPIError parses an error response body. The status code is attached so
// callers can branch without re-reading the response.
func ParseAPIError(data []byte, statusCode int) *APIError {
	var apiErr APIError

	err := json.Unmarshal(data, &apiErr)
	if err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = "request failed"
		}
	}

	apiErr.StatusCode = statusCode

	return &apiErr
}

// InputError is returned when a caller supplies an app, table, or field
// identifier that does not resolve. It always carries the list of valid
// options so the mistake can be corrected without another round trip.
type InputError struct {
	Kind      string // "app", "table", or "field"
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("%s %q not found; available: %s", e.Kind, e.Name, strings.Join(e.Available, ", "))
}

// TransportError is returned once the retry budget for a request is exhausted.
type TransportError struct {
	Path     string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

// Unwrap returns the last underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// PartialWriteError is returned by Upsert when the API reports partial
// success (207). The full per-line breakdown lives on the UpsertResult.
type PartialWriteError struct {
	Processed  int
	LineErrors map[string][]string
}

// Error implements the error interface.
func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("upsert partially failed: %d lines rejected of %d processed", len(e.LineErrors), e.Processed)
}

// Static configuration errors. Missing required configuration is fatal at
// construction time, never a per-call error.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrRealmHostnameRequired = errors.New("realm hostname is required")
	ErrUserTokenRequired     = errors.New("user token is required")
	ErrAppIDsRequired        = errors.New("app ID mapping is required")
	ErrInvalidAppIDs         = errors.New("app ID mapping is not valid JSON")
)

// Static errors wrapped with context by the client packages.
var (
	ErrNoUpdateParameters  = errors.New("no update parameters provided")
	ErrNoSelectFields      = errors.New("at least one select field is required")
	ErrUnsupportedOperator = errors.New("unsupported query operator")
	ErrUnexpectedShape     = errors.New("unexpected response shape")
	ErrFieldNotInTable     = errors.New("field not found in table")
	ErrNotAFileField       = errors.New("field is not a file attachment field")
	ErrExportAborted       = errors.New("record export aborted")
)

// IsInput checks whether err is (or wraps) an InputError.
func IsInput(err error) bool {
	inputErr := &InputError{}

	return errors.As(err, &inputErr)
}

// IsTransport checks whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// IsNotFound checks whether err is an API 404.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return false
}

// IsRateLimited checks whether err is an API 429.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}
