package auth

import "errors"

var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller identity resolved from a bearer token. Email is the
// only trusted identity key in this system.
type Identity struct {
	Email string
}
