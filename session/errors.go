package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the username is unknown
	// or the password does not match.
	ErrInvalidCredentials = errors.New("session: invalid credentials")

	// ErrForbidden is returned by Require when the current user may not use a module.
	ErrForbidden = errors.New("session: not authorized")
)
