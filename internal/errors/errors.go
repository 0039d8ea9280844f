// Package errors defines the sentinel errors shared by the console's state
// stores and handlers. Their messages are user-facing: the stores record
// them verbatim and the login page displays them.
package errors

import "errors"

var (
	// ErrInvalidCredentials: the backend answered and rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLoginFailed: the login attempt could not be completed (transport
	// failure, bad response). Distinct from a rejection.
	ErrLoginFailed = errors.New("login failed")

	// ErrWorkspaceFetch: the workspace list could not be loaded.
	ErrWorkspaceFetch = errors.New("failed to fetch workspaces")
)
