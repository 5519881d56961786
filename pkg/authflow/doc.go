// Package authflow implements a two-factor login protocol: password
// verification followed by an RFC 6238 one-time password, producing signed
// bearer tokens with an explicit verified/unverified state and strict
// version pinning. It also covers TOTP secret rotation and a single-use
// password-reset-session protocol backed by an ephemeral key-value store.
//
// The login state machine is Unauthenticated -> Unverified -> Verified:
//
//	challenge, err := svc.Init(ctx, authflow.InitRequest{Username: u, Password: p})
//	// client computes an OTP from challenge.Secret, then:
//	token, err := svc.Verify(ctx, authflow.VerifyRequest{Token: challenge.Token, OTP: otp})
//	// every protected operation:
//	identity, ok := svc.Authenticate(ctx, token)
//
// Init, Verify, RotateSecret and ConsumeReset fail hard with distinct
// sentinel errors. Authenticate is a soft-fail query that collapses every
// failure to "no identity", and InitiateReset reports nothing at all so
// success and unknown-identity are externally indistinguishable.
//
// Persistence is abstracted behind CredentialStore (identities, password
// hashes, TOTP secrets) and SessionStore (pending reset nonces with TTL);
// see pkg/credstore and pkg/sessionstore for the PostgreSQL and Redis
// implementations. Reset carrier delivery goes through ResetLinkSender,
// implemented by pkg/email.
package authflow
