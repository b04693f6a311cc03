package billing

import "errors"

var (
	ErrVerification     = errors.New("webhook verification failed")
	ErrMalformedEvent   = errors.New("malformed subscription event")
	ErrProfileNotFound  = errors.New("no profile matches subscription customer")
	ErrCustomerConflict = errors.New("profile already linked to a different customer")
	ErrStore            = errors.New("profile store failure")
	ErrProvider         = errors.New("payment provider failure")
	ErrInvalidRequest   = errors.New("invalid request")
)
