package authflow

import "errors"

var (
	// ErrInvalidCredential covers both unknown usernames and wrong passwords
	// so login failures don't reveal which part was wrong.
	ErrInvalidCredential = errors.New("authflow: invalid credentials")
	ErrInvalidOTP        = errors.New("authflow: invalid one-time password")
	// ErrTokenInvalid covers bad signature, missing required claim, and
	// expiry for the hard-fail paths (Verify). Authenticate never returns
	// errors at all.
	ErrTokenInvalid = errors.New("authflow: invalid token")
	// ErrSessionInvalid deliberately does not distinguish missing, expired,
	// mismatched, and already-consumed reset sessions.
	ErrSessionInvalid = errors.New("authflow: reset session invalid or expired")
	ErrPasswordReuse    = errors.New("authflow: replacement password matches the current password")
	ErrIdentityNotFound = errors.New("authflow: identity not found")
	// ErrNoPendingSession is returned by SessionStore implementations when
	// no nonce is stored for the username.
	ErrNoPendingSession = errors.New("authflow: no pending reset session")
	ErrInvalidRequest   = errors.New("authflow: invalid request")
)
