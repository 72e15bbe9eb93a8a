package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	RequestID  string
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnavailable:
		return e.StatusCode == http.StatusBadGateway ||
			e.StatusCode == http.StatusServiceUnavailable ||
			e.StatusCode == http.StatusGatewayTimeout
	}
	return false
}

func (e *APIError) fields() map[string]any {
	var m map[string]any
	if err := json.Unmarshal(e.Body, &m); err != nil {
		return nil
	}
	return m
}

// Message is the backend's human readable reason: the "error", "detail" or
// "message" member of the body, in that order.
func (e *APIError) Message() string {
	m := e.fields()
	for _, k := range []string{"error", "detail", "message"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string { return f.Field + ": " + f.Message }

// FieldErrors flattens a validation body such as
// {"username": ["already taken"], "password": ["too short"]} into one entry
// per member, sorted by field name. It returns nil when the body is not a
// JSON object.
func (e *APIError) FieldErrors() []FieldError {
	m := e.fields()
	if len(m) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(m))
	for k, v := range m {
		out = append(out, FieldError{Field: k, Message: flatten(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func flatten(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, flatten(p))
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// IsStatus reports whether err carries an APIError with the given code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
