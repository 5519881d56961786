package totp

import "errors"

var (
	ErrInvalidSecret          = errors.New("totp: invalid base32 secret")
	ErrInvalidStep            = errors.New("totp: step must be positive")
	ErrInvalidDigits          = errors.New("totp: digits must be between 1 and 10")
	ErrUnsupportedAlgorithm   = errors.New("totp: unsupported algorithm")
	ErrMissingAccountName     = errors.New("totp: missing account name")
	ErrMissingIssuer          = errors.New("totp: missing issuer")
	ErrFailedToGenerateSecret = errors.New("totp: failed to generate secret")
)
