package credstore

import "errors"

var (
	ErrIdentityExists = errors.New("credstore: username or email already taken")
)
