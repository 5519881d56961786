package tokencodec

import (
	"errors"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// versionRegex accepts dotted-integer protocol versions such as "0.3" or "1.2.0".
var versionRegex = regexp.MustCompile(`^\d+(\.\d+)*$`)

// AccessClaims is the claim set carried by bearer tokens. Verified
// distinguishes the short-lived token minted after password login from the
// long-lived token minted after OTP verification; Version pins the token to
// the protocol version it was minted under.
type AccessClaims struct {
	Username string `json:"username"`
	Verified bool   `json:"verified"`
	Version  string `json:"version"`
	jwt.RegisteredClaims
}

// ResetClaims is the claim set carried by password-reset carrier tokens.
// Key is the single-use nonce that must match the server-side session entry.
type ResetClaims struct {
	Username string `json:"username"`
	Key      string `json:"key"`
	jwt.RegisteredClaims
}

// Codec mints and verifies HS256-signed, time-bounded claim sets.
// The supported protocol version is injected at construction rather than
// read from a global, so every codec instance states exactly which token
// generation it accepts.
type Codec struct {
	signingKey []byte
	version    string
	parser     *jwt.Parser
}

// New creates a Codec with the given symmetric signing key and supported
// protocol version. The key should be at least 32 bytes; the version must be
// a dotted-integer string.
func New(signingKey []byte, version string) (*Codec, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if !versionRegex.MatchString(version) {
		return nil, ErrInvalidVersion
	}

	return &Codec{
		signingKey: signingKey,
		version:    version,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Version returns the protocol version this codec mints and accepts.
func (c *Codec) Version() string {
	return c.version
}

// MintAccess signs a bearer token for the given username. The verified flag
// and TTL are chosen by the caller: unverified login tokens are short-lived,
// verified tokens long-lived.
func (c *Codec) MintAccess(username string, verified bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: username,
		Verified: verified,
		Version:  c.version,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

// ParseAccess verifies the signature and temporal claims of a bearer token
// and returns its claim set. Both exp and iat must be present. Version is
// NOT checked here: login verification accepts any generation, only the
// authenticate path pins the version.
func (c *Codec) ParseAccess(tokenString string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := c.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// MintReset signs a reset-session carrier token binding the username to the
// server-side nonce.
func (c *Codec) MintReset(username, key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		Username: username,
		Key:      key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

// ParseReset verifies a reset-session carrier token and returns its claims.
func (c *Codec) ParseReset(tokenString string) (*ResetClaims, error) {
	var claims ResetClaims
	if err := c.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (c *Codec) parse(tokenString string, claims jwt.Claims) error {
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.signingKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case err != nil:
		return errors.Join(ErrTokenInvalid, err)
	case !token.Valid:
		return ErrTokenInvalid
	}

	// The parser enforces exp; iat is equally required by the protocol.
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return ErrMissingClaim
	}

	return nil
}
