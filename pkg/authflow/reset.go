package authflow

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// nonceBytes yields 160 bits of entropy per reset nonce.
const nonceBytes = 20

// InitiateReset starts a single-use password-reset session for the identity
// named by a username or email address. It reports nothing to the caller:
// unknown identities, pending sessions and delivery failures all look
// identical from the outside (anti-enumeration, OWASP forgot-password
// guidance). Internal failures are logged.
//
// A pending session is never overwritten or extended; a second initiate
// within the TTL is a silent no-op.
func (s *Service) InitiateReset(ctx context.Context, req InitiateResetRequest) {
	if err := req.Validate(); err != nil {
		s.log.DebugContext(ctx, "reset initiate dropped: invalid request", logger.Error(err), logger.Component("authflow"))
		return
	}

	var (
		identity *Identity
		err      error
	)
	if strings.Contains(req.Ident, "@") {
		identity, err = s.findByEmail(ctx, req.Ident)
	} else {
		identity, err = s.findByUsername(ctx, req.Ident)
	}
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			s.log.DebugContext(ctx, "reset initiate dropped: unknown identity", logger.Component("authflow"))
		} else {
			s.log.ErrorContext(ctx, "reset initiate failed: identity lookup", logger.Error(err), logger.Component("authflow"))
		}
		return
	}

	nonce, err := newNonce()
	if err != nil {
		s.log.ErrorContext(ctx, "reset initiate failed: nonce generation", logger.Error(err), logger.Component("authflow"))
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	stored, err := s.sessions.PutIfAbsent(storeCtx, identity.Username, nonce, s.resetSessionTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "reset initiate failed: session store", logger.Error(err), logger.Component("authflow"))
		return
	}
	if !stored {
		s.log.DebugContext(ctx, "reset initiate dropped: session already pending",
			slog.String("username", identity.Username),
			logger.Component("authflow"),
		)
		return
	}

	carrier, err := s.codec.MintReset(identity.Username, nonce, s.resetSessionTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "reset initiate failed: carrier mint", logger.Error(err), logger.Component("authflow"))
		return
	}

	if s.sender == nil {
		s.log.DebugContext(ctx, "reset session initiated without delivery collaborator",
			slog.String("username", identity.Username),
			logger.Component("authflow"),
		)
		return
	}

	if err := s.sender.SendResetLink(ctx, identity, carrier); err != nil {
		s.log.ErrorContext(ctx, "reset initiate failed: delivery",
			slog.String("username", identity.Username),
			logger.Error(err),
			logger.Component("authflow"),
		)
	}
}

// ConsumeReset completes a reset session: the carrier token must be signed
// and unexpired, the embedded nonce must exactly match the stored one, and
// the new password must differ from the current one. The nonce is deleted
// only after the credential write commits, so a failed write leaves the
// session usable for a retry with the same carrier token.
func (s *Service) ConsumeReset(ctx context.Context, req ConsumeResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := s.codec.ParseReset(req.Session)
	if err != nil {
		return ErrSessionInvalid
	}

	getCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	stored, err := s.sessions.Get(getCtx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrNoPendingSession) {
			return ErrSessionInvalid
		}
		return fmt.Errorf("failed to read reset session: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(claims.Key)) != 1 {
		return ErrSessionInvalid
	}

	identity, err := s.findByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return ErrSessionInvalid
		}
		return fmt.Errorf("failed to resolve identity: %w", err)
	}

	currentHash, err := s.passwordHash(ctx, identity.Username)
	if err != nil {
		return fmt.Errorf("failed to load password hash: %w", err)
	}

	if bcrypt.CompareHashAndPassword(currentHash, []byte(req.NewPassword)) == nil {
		return ErrPasswordReuse
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash replacement password: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.creds.UpdatePassword(writeCtx, identity.Username, newHash); err != nil {
		// The nonce stays put: the client may retry with the same carrier.
		return fmt.Errorf("failed to update password: %w", err)
	}

	delCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.sessions.Delete(delCtx, identity.Username); err != nil {
		// Password already changed; the leftover nonce dies with its TTL.
		s.log.WarnContext(ctx, "failed to delete consumed reset session",
			slog.String("username", identity.Username),
			logger.Error(err),
			logger.Component("authflow"),
		)
	}

	return nil
}

func newNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
