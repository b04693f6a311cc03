package profile

import "errors"

var (
	ErrNotFound         = errors.New("profile not found")
	ErrAlreadyExists    = errors.New("profile already exists")
	ErrStoreUnavailable = errors.New("profile store unavailable")
	ErrInvalidProfile   = errors.New("invalid profile")
)
