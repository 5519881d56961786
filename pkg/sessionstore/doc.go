// Package sessionstore implements the ephemeral reset-session store on
// Redis. Keys follow the "reset_password_<username>" contract with a
// per-key TTL, and creation uses SETNX so at most one nonce is pending per
// username even under concurrent initiations.
package sessionstore
