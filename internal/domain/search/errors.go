package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// User facing messages.
const (
	MessageEmptyCity = "Please enter a city name."
	MessageFallback  = "Something went wrong. Please try again."
)

// ValidationError is raised locally for input that never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteError is a non-2xx response that carried a usable message.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// TransportError covers missing responses and bodies that could not be understood.
// Status is zero when no response was received.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("unusable response (status %d): %v", e.Status, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MessageFor converts any failure into the text shown to the user. Technical
// details of transport failures are never exposed.
func MessageFor(err error) string {
	var (
		validation *ValidationError
		remote     *RemoteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation) && validation.Message != "":
		return validation.Message
	case errors.As(err, &remote) && remote.Message != "":
		return remote.Message
	default:
		return MessageFallback
	}
}

// ClassifyResponse turns a non-2xx response body into a RemoteError or a
// TransportError. Precedence: the "error" field of a JSON object, then a plain
// string body, otherwise a TransportError.
func ClassifyResponse(status int, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &TransportError{Status: status, Err: errors.New("empty error body")}
	}
	if !json.Valid(trimmed) {
		return &RemoteError{Status: status, Message: string(trimmed)}
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return &TransportError{Status: status, Err: err}
	}
	switch v := decoded.(type) {
	case map[string]any:
		if msg := structuredMessage(v["error"]); msg != "" {
			return &RemoteError{Status: status, Message: msg}
		}
	case string:
		if msg := strings.TrimSpace(v); msg != "" {
			return &RemoteError{Status: status, Message: msg}
		}
	}
	return &TransportError{Status: status, Err: errors.New("error body carries no message")}
}

// structuredMessage reads {"error":"..."} and the nested {"error":{"message":"..."}} form.
func structuredMessage(field any) string {
	switch v := field.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
