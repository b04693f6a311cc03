package auth

import "errors"

var (
	ErrMissingToken    = errors.New("auth: missing bearer token")
	ErrInvalidToken    = errors.New("auth: invalid token")
	ErrMissingSecret   = errors.New("auth: missing jwt secret")
	ErrUnauthenticated = errors.New("auth: no identity in context")
)
