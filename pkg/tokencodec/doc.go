// Package tokencodec mints and verifies the signed claim sets used by the
// authentication protocol: bearer tokens (username, verified, version) and
// password-reset carrier tokens (username, key).
//
// Tokens are standard HS256 JWTs via github.com/golang-jwt/jwt/v5. Parsing
// rejects any other signing algorithm and requires both exp and iat claims.
// The protocol version a codec stamps into bearer tokens is a constructor
// argument; callers that need version pinning compare the parsed claim
// against Codec.Version().
package tokencodec
