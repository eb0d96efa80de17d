// ABOUTME: Failure taxonomy shared by external collaborator clients
// ABOUTME: Callers map these categories to canned user-safe replies

// Package collab defines the error categories a collaborator call can fail
// with. Collaborator packages wrap these sentinels so the reply layer can
// pick a user-safe fallback with errors.Is without knowing which
// collaborator failed.
package collab

import "errors"

var (
	// ErrTimeout means the collaborator did not answer within the bounded
	// call deadline.
	ErrTimeout = errors.New("collaborator timeout")

	// ErrUpstream means the collaborator answered with an error.
	ErrUpstream = errors.New("collaborator upstream error")

	// ErrMalformed means the collaborator answered with something the
	// client could not interpret.
	ErrMalformed = errors.New("collaborator malformed response")
)
