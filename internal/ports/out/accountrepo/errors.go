package accountrepo

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken indicates an identity already exists for the email.
	ErrEmailTaken = errors.New("identity email already taken")
)
