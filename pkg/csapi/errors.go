package csapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every *APIError unwraps to exactly one of these, so callers can use errors.Is.
var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermission       = errors.New("permission denied")
	ErrNotFound         = errors.New("resource not found")
	ErrValidation       = errors.New("validation failed")
	ErrServer           = errors.New("server error")
	ErrTransport        = errors.New("transport error")
	ErrDecode           = errors.New("unexpected response shape")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrAPIEndpointRequired  = errors.New("API endpoint is required")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrInvalidPage          = errors.New("page must be >= 1")
	ErrInvalidPageSize      = errors.New("page_size must be >= 1")
	ErrInvalidID            = errors.New("id must be a positive integer")
	ErrPurgePhaseFailed     = errors.New("purge phase failed")
	ErrDependencyCycle      = errors.New("circular dependency between resource types")
	ErrUnknownResourceType  = errors.New("unknown resource type")
	ErrMissingEnvelopeField = errors.New("missing envelope field")
	ErrMissingRecordID      = errors.New("record has no id")
	ErrCacheMiss            = errors.New("cache miss")
	ErrNoMoreItems          = errors.New("no more items")
)

// APIError is returned by every failed API call. StatusCode is zero when no response was received.
type APIError struct {
	Kind       error  `json:"-"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"error"`
	Body       []byte `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder

	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("api error")
	}

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// KindForStatus maps an HTTP status code to an error kind. It returns nil for 2xx codes.
func KindForStatus(status int) error {
	switch {
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		return nil
	case status == http.StatusBadRequest:
		return ErrValidation
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrPermission
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}

// NewStatusError builds the error for a non-2xx response.
func NewStatusError(status int, body []byte) *APIError {
	return &APIError{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Message:    ParseErrorBody(body),
		Body:       body,
	}
}

// NewTransportError wraps a failure that produced no response.
func NewTransportError(err error) *APIError {
	return &APIError{Kind: ErrTransport, Err: err}
}

// NewDecodeError wraps a response body that could not be decoded into the expected shape.
func NewDecodeError(status int, body []byte, err error) *APIError {
	return &APIError{Kind: ErrDecode, StatusCode: status, Body: body, Err: err}
}

// ParseErrorBody extracts the server's message from an error body of the form {"error": "..."}.
// Bodies that are not JSON are returned trimmed.
func ParseErrorBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	err := json.Unmarshal(body, &payload)
	if err != nil {
		return strings.TrimSpace(string(body))
	}

	if payload.Error != "" {
		return payload.Error
	}

	return payload.Message
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsForbidden checks if the error is a permission error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrPermission)
}

// IsValidation checks if the server rejected the request payload.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsServerError checks if the server failed with a 5xx status.
func IsServerError(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsTransport checks if no response was received.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsDecode checks if the response had an unexpected shape.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
