package service

import "errors"

// Service errors. Callers classify them with errors.Is; the API layer maps
// each one to a status code.
var (
	// ErrInvalidCredentials is returned by Login for an unknown email and for a
	// wrong password alike. Maps to 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates the caller could not be authenticated, for
	// example because the token's user no longer exists. Maps to 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller lacks the capability
	// for the operation. Maps to 403.
	ErrForbidden = errors.New("access denied")

	// ErrAssigneeNotFound indicates a task names an assignee that does not
	// exist. Maps to 400.
	ErrAssigneeNotFound = errors.New("assigned user not found")

	// ErrCannotDeleteSelf is returned when an administrator tries to remove
	// their own account. Maps to 400.
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
)
