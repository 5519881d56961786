package authflow_test

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/authflow"
)

func TestService_EnrollmentURI(t *testing.T) {
	t.Parallel()

	svc := authflow.New(new(MockCredentialStore), new(MockSessionStore), newTestCodec(t),
		authflow.WithIssuer("Example App"),
	)

	uri, err := svc.EnrollmentURI(testIdentity(), testSecret)
	require.NoError(t, err)

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", parsed.Scheme)
	assert.Equal(t, "totp", parsed.Host)
	assert.Contains(t, parsed.Path, "alice@example.com")
	assert.Equal(t, "Example App", parsed.Query().Get("issuer"))
	assert.Equal(t, "6", parsed.Query().Get("digits"))

	t.Run("falls back to username without email", func(t *testing.T) {
		t.Parallel()
		identity := testIdentity()
		identity.Email = ""
		uri, err := svc.EnrollmentURI(identity, testSecret)
		require.NoError(t, err)
		assert.Contains(t, uri, "alice")
	})
}

func TestService_EnrollmentQR(t *testing.T) {
	t.Parallel()

	svc := authflow.New(new(MockCredentialStore), new(MockSessionStore), newTestCodec(t))
	png, err := svc.EnrollmentQR(testIdentity(), testSecret, 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
