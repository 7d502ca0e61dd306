package client

import (
	"errors"
	"fmt"
	"net/http"

	"social_gateway/internal/models"
)

var (
	// ErrUnauthenticated matches any error produced by a 401 response.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNoToken is returned by Login when the backend accepted the
	// credentials but no token could be found in any accepted response shape.
	ErrNoToken = errors.New("login succeeded but no token was found in the response")
	// ErrInvalidResponse marks bodies that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response format from server")
)

// APIError is a non-2xx response. Message is taken from the body's "message"
// or "error" field, else "Error: <status>".
type APIError struct {
	Status   int
	Message  string
	Envelope *models.Envelope
}

func newAPIError(env *models.Envelope) *APIError {
	msg := models.Message(env.Body)
	if msg == "" {
		msg = fmt.Sprintf("Error: %d", env.Status)
	}
	return &APIError{Status: env.Status, Message: msg, Envelope: env}
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	return nil
}

// LoginPath is where callers send a user whose session was rejected.
const LoginPath = "/auth/login"

// Navigator moves the caller somewhere else: a redirect for pages, a hint for the CLI.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// HandleUnauthenticated navigates to LoginPath once if err reports a rejected
// session, and tells the caller whether it did.
func HandleUnauthenticated(err error, nav Navigator) bool {
	if !errors.Is(err, ErrUnauthenticated) {
		return false
	}
	if nav != nil {
		nav.Navigate(LoginPath)
	}
	return true
}
