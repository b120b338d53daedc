// ABOUTME: Normalized error type for backend calls
// ABOUTME: Status 0 marks transport failures where no response was received

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the only error shape returned for HTTP and transport failures.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// TokenExpired reports a 401, meaning the bearer token may no longer be valid.
func (e *APIError) TokenExpired() bool { return e.Status == http.StatusUnauthorized }

// Transport reports a failure where no response was received.
func (e *APIError) Transport() bool { return e.Status == 0 }

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.TokenExpired()
}

// IsTransport reports whether err is a transport-level APIError.
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Transport()
}

// StatusOf returns the HTTP status carried by err, or -1 if err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}

// MessageOf returns the server-supplied message when err is an APIError.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// errorBody covers FastAPI's {"detail": ...} plus the {"message"} and {"error"} shapes.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// parseErrorMessage picks the most specific human-readable message from an error body.
func parseErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := parseDetail(eb.Detail); msg != "" {
		return msg
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}

// parseDetail handles a plain string or a validation list of {"msg": ...} items.
func parseDetail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
