package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindConnectivity
	KindValidation
)

// Error is every failure the gateway can produce, classified so callers can
// pick a user-facing message without inspecting status codes themselves.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindAuth:
		return "authentication required"
	case KindConnectivity:
		return "could not reach the server"
	case KindValidation:
		return "request rejected"
	default:
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
}

func connectivityError(err error) *Error {
	return &Error{Kind: KindConnectivity, Message: fmt.Sprintf("could not reach the server: %v", err)}
}

// classify maps a non-2xx response to the error taxonomy, surfacing the
// server-provided message when the body carries one.
func classify(resp *http.Response) *Error {
	e := &Error{Status: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		e.Kind = KindAuth
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict:
		e.Kind = KindValidation
	default:
		e.Kind = KindUnknown
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return e
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		e.Message = body.Message
	}
	return e
}
