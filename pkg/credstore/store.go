package credstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/authflow"
	"github.com/dmitrymomot/authkit/pkg/pg"
	"github.com/dmitrymomot/authkit/pkg/totp"
)

// Store is the PostgreSQL-backed authflow.CredentialStore. Each identity
// row owns exactly one live TOTP secret; rotation and password changes are
// single UPDATE statements, so there is no window where two values coexist.
type Store struct {
	pool       *pgxpool.Pool
	bcryptCost int
}

// Option configures a Store.
type Option func(*Store)

// WithBcryptCost sets the cost used when hashing passwords at identity
// creation.
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// New creates a credential store on an established connection pool.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:       pool,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIdentity provisions a new identity together with its first TOTP
// secret. Secret creation happens right here in the creation path, not in
// an event listener, so an identity can never exist without a live secret.
func (s *Store) CreateIdentity(ctx context.Context, username, email, password string) (*authflow.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("credstore: hash password: %w", err)
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("credstore: generate first secret: %w", err)
	}

	identity := &authflow.Identity{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO identities (id, username, email, password_hash, totp_secret, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		identity.ID, identity.Username, identity.Email, hash, secret, identity.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrIdentityExists
		}
		return nil, fmt.Errorf("credstore: insert identity: %w", err)
	}

	return identity, nil
}

// FindByUsername resolves an identity by its username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*authflow.Identity, error) {
	return s.findBy(ctx, "username", username)
}

// FindByEmail resolves an identity by its email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (*authflow.Identity, error) {
	return s.findBy(ctx, "email", email)
}

func (s *Store) findBy(ctx context.Context, column, value string) (*authflow.Identity, error) {
	var identity authflow.Identity
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM identities WHERE `+column+` = $1`,
		value,
	).Scan(&identity.ID, &identity.Username, &identity.Email, &identity.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, authflow.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("credstore: select identity: %w", err)
	}
	return &identity, nil
}

// PasswordHash returns the current bcrypt hash for the username.
func (s *Store) PasswordHash(ctx context.Context, username string) ([]byte, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx,
		`SELECT password_hash FROM identities WHERE username = $1`, username,
	).Scan(&hash)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, authflow.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("credstore: select password hash: %w", err)
	}
	return hash, nil
}

// UpdatePassword commits a new password hash in a single write.
func (s *Store) UpdatePassword(ctx context.Context, username string, hash []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE identities SET password_hash = $2 WHERE username = $1`, username, hash,
	)
	if err != nil {
		return fmt.Errorf("credstore: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authflow.ErrIdentityNotFound
	}
	return nil
}

// TOTPSecret returns the identity's current live secret.
func (s *Store) TOTPSecret(ctx context.Context, username string) (string, error) {
	var secret string
	err := s.pool.QueryRow(ctx,
		`SELECT totp_secret FROM identities WHERE username = $1`, username,
	).Scan(&secret)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", authflow.ErrIdentityNotFound
		}
		return "", fmt.Errorf("credstore: select totp secret: %w", err)
	}
	return secret, nil
}

// ReplaceTOTPSecret swaps the live secret in one UPDATE. The old value is
// void the instant the statement commits; concurrent rotations serialize on
// the row, last writer wins.
func (s *Store) ReplaceTOTPSecret(ctx context.Context, username, secret string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE identities SET totp_secret = $2 WHERE username = $1`, username, secret,
	)
	if err != nil {
		return fmt.Errorf("credstore: replace totp secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authflow.ErrIdentityNotFound
	}
	return nil
}
