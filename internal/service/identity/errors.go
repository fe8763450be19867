package identity

import "errors"

var (
	ErrAlreadyRegistered  = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrRateLimited        = errors.New("too many requests")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoPassword         = errors.New("account has no password")
)
