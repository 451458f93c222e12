// ABOUTME: Error taxonomy for API calls: network, unauthorized, client, server
// ABOUTME: Carries the server's {error} string and maps statuses to sentinels

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels matched by *Error.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindNetwork means no response was received.
	KindNetwork ErrorKind = iota
	// KindUnauthorized means the server answered 401 and the session was dropped.
	KindUnauthorized
	// KindClient is a validation or business failure (4xx).
	KindClient
	// KindServer is a server failure (5xx) or an unreadable response.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every failed Client call.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // 0 for network failures
	Message    string // server-provided {error} text, may be empty
	Details    string // server-provided {details}, never shown to users
	Method     string
	Path       string
	Err        error // underlying transport or decode error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNetwork:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s %s: server returned status %d", e.Method, e.Path, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by status code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// UserMessage returns the text a view should show for err. Validation and
// business failures surface the server's message verbatim; network and
// server failures, and responses without a message, use fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	switch apiErr.Kind {
	case KindClient, KindUnauthorized:
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return fallback
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

func statusError(method, path string, status int, body []byte) *Error {
	e := &Error{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Method:     method,
		Path:       path,
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Message = strings.TrimSpace(eb.Error)
		e.Details = strings.TrimSpace(eb.Details)
	}
	return e
}
