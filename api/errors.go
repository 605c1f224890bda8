package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Error type strings the API puts in its error envelope.
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypeServer         = "server_error"
)

// Error is the flat error envelope the API returns. Every field is
// independently optional; the API omits what it does not know and this type
// tolerates that on both sides of the wire.
type Error struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`

	// Status is the HTTP status of the response that carried the
	// envelope. The transport sets it; it is never part of the body.
	Status int `json:"-"`
	// RetryAfter is the server-suggested backoff from the Retry-After
	// header, when one was sent.
	RetryAfter time.Duration `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	if e.Status != 0 {
		return fmt.Sprintf("api: %s (status: %d)", msg, e.Status)
	}
	return fmt.Sprintf("api: %s", msg)
}

// Is implements errors.Is. Every populated field of the target must match;
// an all-empty target matches nothing.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Type == "" && t.Code == "" && t.Status == 0 {
		return false
	}
	if t.Type != "" && t.Type != e.Type {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	if t.Status != 0 && t.Status != e.Status {
		return false
	}
	return true
}

// Temporary reports whether the failure is worth retrying: rate limiting
// and server-side trouble, never client mistakes.
func (e *Error) Temporary() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// errorEnvelope is the wire wrapper around Error.
type errorEnvelope struct {
	Error *Error `json:"error"`
}

// DecodeErrorResponse interprets a non-2xx response body. Envelopes with
// missing fields decode to whatever was present; bodies that are not JSON
// become the message verbatim, truncated. The HTTP status is always
// attached.
func DecodeErrorResponse(status int, body []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		env.Error.Status = status
		return env.Error
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &Error{Message: msg, Status: status}
}

// NewInvalidRequestError creates a client-side invalid request error.
func NewInvalidRequestError(msg string) *Error {
	return &Error{
		Message: msg,
		Type:    ErrorTypeInvalidRequest,
		Status:  http.StatusBadRequest,
	}
}

// NewRateLimitError creates a 429-shaped error for client-side throttling.
func NewRateLimitError(msg string) *Error {
	return &Error{
		Message: msg,
		Type:    ErrorTypeRateLimit,
		Status:  http.StatusTooManyRequests,
	}
}
