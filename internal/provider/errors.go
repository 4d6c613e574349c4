package provider

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("provider: client id and secret are required")
	ErrNoAccessToken      = errors.New("provider: not signed in")
)

// APIError is an error response returned by the provider.
type APIError struct {
	Status         int    `json:"-"`
	Type           string `json:"error_type"`
	Code           string `json:"error_code"`
	Message        string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.DisplayMessage
	if msg == "" {
		msg = e.Message
	}
	if e.Code == "" {
		return fmt.Sprintf("provider error (HTTP %d): %s", e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}
