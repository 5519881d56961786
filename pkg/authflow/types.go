package authflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is the externally owned user record resolved through the
// credential store. The core never mutates it directly.
type Identity struct {
	ID        uuid.UUID
	Username  string
	Email     string
	CreatedAt time.Time
}

// CredentialStore resolves identities and persists credential changes.
// Implementations must make ReplaceTOTPSecret and UpdatePassword single
// atomic writes: there is never a window with two valid secrets.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	PasswordHash(ctx context.Context, username string) ([]byte, error)
	UpdatePassword(ctx context.Context, username string, hash []byte) error
	TOTPSecret(ctx context.Context, username string) (string, error)
	ReplaceTOTPSecret(ctx context.Context, username, secret string) error
}

// SessionStore holds pending reset nonces with per-key TTL.
// PutIfAbsent must be atomic (check-then-create as one operation) so two
// concurrent initiations cannot overwrite each other's nonce.
type SessionStore interface {
	// PutIfAbsent stores the nonce under the username unless one already
	// exists. Returns false without touching the existing entry or its TTL.
	PutIfAbsent(ctx context.Context, username, nonce string, ttl time.Duration) (bool, error)
	// Get returns the pending nonce or ErrNoPendingSession.
	Get(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
}

// ResetLinkSender delivers the reset carrier token to the identity owner,
// typically by email. Delivery failures never change the response the
// initiator observes.
type ResetLinkSender interface {
	SendResetLink(ctx context.Context, identity *Identity, carrierToken string) error
}

// Challenge is the result of a successful password login: a short-lived
// unverified bearer token plus the identity's current TOTP secret for the
// client's authenticator app.
type Challenge struct {
	Token  string
	Secret string
}
