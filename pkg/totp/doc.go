// Package totp implements RFC 6238 time-based one-time passwords.
//
// The package is deliberately self-contained: the HOTP/TOTP math lives here
// instead of behind a third-party dependency so the verification path stays
// auditable. A Generator is a pure function of its secret, step, digit count
// and hash algorithm; OTPAt(t) is deterministic and every instant inside the
// same step window produces the same code.
//
// Digit count is always explicit. Different protocols wire different lengths
// (the login flow uses 6, the RFC reference vectors use 8), so Params.Digits
// carries no default and construction fails when it is unset.
//
// Besides code generation the package provides secret creation
// (GenerateSecret, 512 bits of entropy encoded as Base32) and otpauth URI
// construction (EnrollmentURI) for authenticator app onboarding.
package totp
