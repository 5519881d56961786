package authflow

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/authkit/pkg/totp"
)

// RotateSecret replaces the identity's TOTP secret after verifying an OTP
// computed from the current one. Authorization is the caller's concern: the
// identity must come from a successful Authenticate.
//
// The replacement is a single atomic write. Outstanding verified tokens
// survive rotation until their own expiry; OTPs from the old secret are
// worthless immediately.
func (s *Service) RotateSecret(ctx context.Context, identity *Identity, req RotateRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	secret, err := s.totpSecret(ctx, identity.Username)
	if err != nil {
		return "", fmt.Errorf("failed to load TOTP secret: %w", err)
	}

	ok, err := s.checkOTP(secret, req.OTP)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidOTP
	}

	newSecret, err := totp.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate replacement secret: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.creds.ReplaceTOTPSecret(storeCtx, identity.Username, newSecret); err != nil {
		return "", fmt.Errorf("failed to persist replacement secret: %w", err)
	}

	return newSecret, nil
}
