package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. Login never reveals which one happened.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden means the caller is authenticated but does not own the
	// resource.
	ErrForbidden = errors.New("not the resource owner")
)
