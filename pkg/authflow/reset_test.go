package authflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/authflow"
)

func TestService_InitiateReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown identity is a silent no-op", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "ghost").Return(nil, authflow.ErrIdentityNotFound)
		sessions := new(MockSessionStore)
		sender := new(MockResetLinkSender)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithResetLinkSender(sender))
		svc.InitiateReset(ctx, authflow.InitiateResetRequest{Ident: "ghost"})

		sessions.AssertNotCalled(t, "PutIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "SendResetLink", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("email ident resolves through the email index", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByEmail", mock.Anything, "alice@example.com").Return(testIdentity(), nil)
		sessions := new(MockSessionStore)
		sessions.On("PutIfAbsent", mock.Anything, "alice", mock.AnythingOfType("string"), authflow.DefaultResetSessionTTL).
			Return(true, nil)
		sender := new(MockResetLinkSender)
		sender.On("SendResetLink", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithResetLinkSender(sender))
		svc.InitiateReset(ctx, authflow.InitiateResetRequest{Ident: "alice@example.com"})

		creds.AssertExpectations(t)
		sessions.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("carrier token embeds the stored nonce", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)

		var nonce string
		sessions := new(MockSessionStore)
		sessions.On("PutIfAbsent", mock.Anything, "alice", mock.AnythingOfType("string"), authflow.DefaultResetSessionTTL).
			Run(func(args mock.Arguments) { nonce = args.String(2) }).
			Return(true, nil)

		var carrier string
		sender := new(MockResetLinkSender)
		sender.On("SendResetLink", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { carrier = args.String(2) }).
			Return(nil)

		codec := newTestCodec(t)
		svc := authflow.New(creds, sessions, codec, authflow.WithResetLinkSender(sender))
		svc.InitiateReset(ctx, authflow.InitiateResetRequest{Ident: "alice"})

		require.NotEmpty(t, carrier)
		claims, err := codec.ParseReset(carrier)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, nonce, claims.Key)
	})

	t.Run("pending session is not overwritten", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		sessions := new(MockSessionStore)
		sessions.On("PutIfAbsent", mock.Anything, "alice", mock.AnythingOfType("string"), authflow.DefaultResetSessionTTL).
			Return(false, nil)
		sender := new(MockResetLinkSender)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithResetLinkSender(sender))
		svc.InitiateReset(ctx, authflow.InitiateResetRequest{Ident: "alice"})

		sender.AssertNotCalled(t, "SendResetLink", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delivery failure stays internal", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		sessions := new(MockSessionStore)
		sessions.On("PutIfAbsent", mock.Anything, "alice", mock.AnythingOfType("string"), authflow.DefaultResetSessionTTL).
			Return(true, nil)
		sender := new(MockResetLinkSender)
		sender.On("SendResetLink", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(assert.AnError)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithResetLinkSender(sender))
		// Void by contract; nothing to assert beyond the absence of a panic.
		svc.InitiateReset(ctx, authflow.InitiateResetRequest{Ident: "alice"})
		sender.AssertExpectations(t)
	})

	t.Run("no sender configured still stores the session", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		sessions := new(MockSessionStore)
		sessions.On("PutIfAbsent", mock.Anything, "alice", mock.AnythingOfType("string"), authflow.DefaultResetSessionTTL).
			Return(true, nil)

		svc := authflow.New(creds, sessions, newTestCodec(t))
		svc.InitiateReset(ctx, authflow.InitiateResetRequest{Ident: "alice"})
		sessions.AssertExpectations(t)
	})
}

func TestService_ConsumeReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	const (
		testNonce   = "dGVzdC1ub25jZS0yMGJ5dGVzISE"
		newPassword = "an-entirely-new-password"
	)

	mintCarrier := func(t *testing.T, username, nonce string, ttl time.Duration) string {
		t.Helper()
		carrier, err := newTestCodec(t).MintReset(username, nonce, ttl)
		require.NoError(t, err)
		return carrier
	}

	t.Run("happy path updates the password then burns the nonce", func(t *testing.T) {
		t.Parallel()
		var passwordUpdated bool
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		creds.On("PasswordHash", mock.Anything, "alice").Return(testPasswordHash(t), nil)
		creds.On("UpdatePassword", mock.Anything, "alice", mock.AnythingOfType("[]uint8")).
			Run(func(args mock.Arguments) {
				passwordUpdated = true
				hash := args.Get(2).([]byte)
				assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte(newPassword)))
			}).
			Return(nil)

		sessions := new(MockSessionStore)
		sessions.On("Get", mock.Anything, "alice").Return(testNonce, nil)
		sessions.On("Delete", mock.Anything, "alice").
			Run(func(mock.Arguments) { assert.True(t, passwordUpdated, "nonce deleted before the password write") }).
			Return(nil)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithBcryptCost(bcrypt.MinCost))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: newPassword,
		})
		require.NoError(t, err)
		creds.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("second consume finds no session", func(t *testing.T) {
		t.Parallel()
		sessions := new(MockSessionStore)
		sessions.On("Get", mock.Anything, "alice").Return("", authflow.ErrNoPendingSession)

		svc := authflow.New(new(MockCredentialStore), sessions, newTestCodec(t))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, authflow.ErrSessionInvalid)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		sessions := new(MockSessionStore)
		sessions.On("Get", mock.Anything, "alice").Return("a-different-nonce", nil)

		svc := authflow.New(creds, sessions, newTestCodec(t))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, authflow.ErrSessionInvalid)
		creds.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("garbage carrier token", func(t *testing.T) {
		t.Parallel()
		svc := authflow.New(new(MockCredentialStore), new(MockSessionStore), newTestCodec(t))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{Session: "not.a.token", NewPassword: newPassword})
		assert.ErrorIs(t, err, authflow.ErrSessionInvalid)
	})

	t.Run("expired carrier token", func(t *testing.T) {
		t.Parallel()
		svc := authflow.New(new(MockCredentialStore), new(MockSessionStore), newTestCodec(t))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, -time.Minute),
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, authflow.ErrSessionInvalid)
	})

	t.Run("reused password leaves the session pending", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		creds.On("PasswordHash", mock.Anything, "alice").Return(testPasswordHash(t), nil)

		sessions := new(MockSessionStore)
		sessions.On("Get", mock.Anything, "alice").Return(testNonce, nil)

		svc := authflow.New(creds, sessions, newTestCodec(t))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: testPassword,
		})
		assert.ErrorIs(t, err, authflow.ErrPasswordReuse)
		creds.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("failed password write keeps the session for a retry", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		creds.On("PasswordHash", mock.Anything, "alice").Return(testPasswordHash(t), nil)
		creds.On("UpdatePassword", mock.Anything, "alice", mock.AnythingOfType("[]uint8")).Return(assert.AnError)

		sessions := new(MockSessionStore)
		sessions.On("Get", mock.Anything, "alice").Return(testNonce, nil)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithBcryptCost(bcrypt.MinCost))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, assert.AnError)
		sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("failed nonce delete does not fail the reset", func(t *testing.T) {
		t.Parallel()
		creds := new(MockCredentialStore)
		creds.On("FindByUsername", mock.Anything, "alice").Return(testIdentity(), nil)
		creds.On("PasswordHash", mock.Anything, "alice").Return(testPasswordHash(t), nil)
		creds.On("UpdatePassword", mock.Anything, "alice", mock.AnythingOfType("[]uint8")).Return(nil)

		sessions := new(MockSessionStore)
		sessions.On("Get", mock.Anything, "alice").Return(testNonce, nil)
		sessions.On("Delete", mock.Anything, "alice").Return(assert.AnError)

		svc := authflow.New(creds, sessions, newTestCodec(t), authflow.WithBcryptCost(bcrypt.MinCost))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: newPassword,
		})
		assert.NoError(t, err)
	})

	t.Run("short replacement password rejected up front", func(t *testing.T) {
		t.Parallel()
		svc := authflow.New(new(MockCredentialStore), new(MockSessionStore), newTestCodec(t))
		err := svc.ConsumeReset(ctx, authflow.ConsumeResetRequest{
			Session:     mintCarrier(t, "alice", testNonce, time.Minute),
			NewPassword: "short",
		})
		assert.ErrorIs(t, err, authflow.ErrInvalidRequest)
	})
}
