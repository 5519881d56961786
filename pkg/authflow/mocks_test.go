package authflow_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/authkit/pkg/authflow"
)

// MockCredentialStore is a mock implementation of authflow.CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByUsername(ctx context.Context, username string) (*authflow.Identity, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authflow.Identity), args.Error(1)
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*authflow.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authflow.Identity), args.Error(1)
}

func (m *MockCredentialStore) PasswordHash(ctx context.Context, username string) ([]byte, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCredentialStore) UpdatePassword(ctx context.Context, username string, hash []byte) error {
	args := m.Called(ctx, username, hash)
	return args.Error(0)
}

func (m *MockCredentialStore) TOTPSecret(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialStore) ReplaceTOTPSecret(ctx context.Context, username, secret string) error {
	args := m.Called(ctx, username, secret)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of authflow.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) PutIfAbsent(ctx context.Context, username, nonce string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, username, nonce, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockResetLinkSender is a mock implementation of authflow.ResetLinkSender.
type MockResetLinkSender struct {
	mock.Mock
}

func (m *MockResetLinkSender) SendResetLink(ctx context.Context, identity *authflow.Identity, carrierToken string) error {
	args := m.Called(ctx, identity, carrierToken)
	return args.Error(0)
}
