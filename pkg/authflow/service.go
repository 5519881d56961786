package authflow

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/tokencodec"
	"github.com/dmitrymomot/authkit/pkg/totp"
)

const (
	// DefaultLoginTokenTTL bounds how long an unverified token can wait for
	// its OTP.
	DefaultLoginTokenTTL = 10 * time.Minute
	// DefaultAccessTokenTTL is the lifetime of a verified bearer token.
	DefaultAccessTokenTTL = 31 * 24 * time.Hour
	// DefaultResetSessionTTL applies to both the stored nonce and the
	// carrier token; the two must expire together.
	DefaultResetSessionTTL = 10 * time.Minute
	// DefaultStoreTimeout bounds every credential and session store call.
	DefaultStoreTimeout = 5 * time.Second
	// DefaultOTPDigits matches the length authenticator apps are enrolled
	// with through EnrollmentURI.
	DefaultOTPDigits = 6
)

// Service orchestrates the two-factor login state machine
// (Unauthenticated -> Unverified -> Verified), secret rotation, and the
// single-use password-reset protocol.
type Service struct {
	creds    CredentialStore
	sessions SessionStore
	codec    *tokencodec.Codec
	sender   ResetLinkSender
	log      *slog.Logger

	loginTokenTTL   time.Duration
	accessTokenTTL  time.Duration
	resetSessionTTL time.Duration
	storeTimeout    time.Duration
	otpDigits       int
	issuer          string
	bcryptCost      int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger; the default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithResetLinkSender sets the delivery collaborator for reset carrier
// tokens. Without one, initiated sessions are only logged.
func WithResetLinkSender(sender ResetLinkSender) Option {
	return func(s *Service) { s.sender = sender }
}

// WithLoginTokenTTL sets the unverified token lifetime.
func WithLoginTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.loginTokenTTL = ttl
		}
	}
}

// WithAccessTokenTTL sets the verified token lifetime.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTokenTTL = ttl
		}
	}
}

// WithResetSessionTTL sets the shared nonce/carrier lifetime.
func WithResetSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetSessionTTL = ttl
		}
	}
}

// WithStoreTimeout bounds calls into the credential and session stores.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithOTPDigits sets the OTP length the flow verifies against.
func WithOTPDigits(digits int) Option {
	return func(s *Service) {
		if digits > 0 {
			s.otpDigits = digits
		}
	}
}

// WithIssuer sets the service name stamped into enrollment URIs.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithBcryptCost sets the bcrypt cost used when hashing reset passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// New creates the authentication service. The credential store, session
// store and token codec are required collaborators.
func New(creds CredentialStore, sessions SessionStore, codec *tokencodec.Codec, opts ...Option) *Service {
	s := &Service{
		creds:           creds,
		sessions:        sessions,
		codec:           codec,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		loginTokenTTL:   DefaultLoginTokenTTL,
		accessTokenTTL:  DefaultAccessTokenTTL,
		resetSessionTTL: DefaultResetSessionTTL,
		storeTimeout:    DefaultStoreTimeout,
		otpDigits:       DefaultOTPDigits,
		issuer:          "authkit",
		bcryptCost:      bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Init checks the username/password pair and, on success, mints a
// short-lived unverified token. The identity's current TOTP secret is
// returned alongside so the client's authenticator app can produce the OTP
// for Verify.
func (s *Service) Init(ctx context.Context, req InitRequest) (*Challenge, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.findByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	hash, err := s.passwordHash(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to load password hash: %w", err)
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		return nil, ErrInvalidCredential
	}

	secret, err := s.totpSecret(ctx, identity.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load TOTP secret: %w", err)
	}

	token, err := s.codec.MintAccess(identity.Username, false, s.loginTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint login token: %w", err)
	}

	return &Challenge{Token: token, Secret: secret}, nil
}

// Verify validates the submitted OTP against the identity named in the
// presented token and mints a long-lived verified token. An already
// verified token is re-verified idempotently.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	claims, err := s.codec.ParseAccess(req.Token)
	if err != nil {
		return "", errors.Join(ErrTokenInvalid, err)
	}

	secret, err := s.totpSecret(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return "", ErrInvalidCredential
		}
		return "", fmt.Errorf("failed to load TOTP secret: %w", err)
	}

	ok, err := s.checkOTP(secret, req.OTP)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidOTP
	}

	token, err := s.codec.MintAccess(claims.Username, true, s.accessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to mint verified token: %w", err)
	}

	return token, nil
}

// Authenticate resolves a bearer token to an identity. It is a soft-fail
// query: any failure (bad signature, missing claim, expiry, unverified
// token, version mismatch, unknown identity) collapses to (nil, false) so
// callers fall back to anonymous handling. Unexpected store errors are
// logged before collapsing.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*Identity, bool) {
	claims, err := s.codec.ParseAccess(tokenString)
	if err != nil {
		return nil, false
	}

	if !claims.Verified {
		return nil, false
	}

	// Version pinning: an otherwise valid token from another protocol
	// generation yields no identity rather than an error, so clients cannot
	// be silently downgraded.
	if claims.Version != s.codec.Version() {
		return nil, false
	}

	identity, err := s.findByUsername(ctx, claims.Username)
	if err != nil {
		if !errors.Is(err, ErrIdentityNotFound) {
			s.log.WarnContext(ctx, "identity lookup failed during authentication",
				slog.String("username", claims.Username),
				logger.Error(err),
				logger.Component("authflow"),
			)
		}
		return nil, false
	}

	return identity, true
}

// checkOTP computes the current OTP for the secret and compares it in
// constant time.
func (s *Service) checkOTP(secret, submitted string) (bool, error) {
	gen, err := totp.New(secret, totp.Params{
		Step:   totp.DefaultStep,
		Digits: s.otpDigits,
	})
	if err != nil {
		return false, fmt.Errorf("failed to build OTP generator: %w", err)
	}

	want := gen.OTPNow()
	return subtle.ConstantTimeCompare([]byte(want), []byte(submitted)) == 1, nil
}

// Store calls run under a bounded timeout; a deadline surfaces as a
// retriable error from the wrapped call, never as a silent success.

func (s *Service) findByUsername(ctx context.Context, username string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.creds.FindByUsername(ctx, username)
}

func (s *Service) findByEmail(ctx context.Context, email string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.creds.FindByEmail(ctx, email)
}

func (s *Service) passwordHash(ctx context.Context, username string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.creds.PasswordHash(ctx, username)
}

func (s *Service) totpSecret(ctx context.Context, username string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.creds.TOTPSecret(ctx, username)
}
