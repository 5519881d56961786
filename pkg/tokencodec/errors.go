package tokencodec

import "errors"

var (
	ErrMissingSigningKey = errors.New("tokencodec: missing signing key")
	ErrInvalidVersion    = errors.New("tokencodec: version must be a dotted-integer string")
	ErrTokenInvalid      = errors.New("tokencodec: invalid token")
	ErrTokenExpired      = errors.New("tokencodec: token expired")
	ErrMissingClaim      = errors.New("tokencodec: missing required claim")
)
