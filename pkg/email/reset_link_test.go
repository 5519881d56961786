package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/authflow"
	"github.com/dmitrymomot/authkit/pkg/email"
)

type captureSender struct {
	params email.SendEmailParams
}

func (c *captureSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	c.params = params
	return nil
}

func TestNewResetLinkMailer(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}

	_, err := email.NewResetLinkMailer(nil, "https://app.example.com", "Acme")
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewResetLinkMailer(sender, "not a url", "Acme")
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewResetLinkMailer(sender, "https://app.example.com", "")
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestResetLinkMailer_SendResetLink(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	mailer, err := email.NewResetLinkMailer(sender, "https://app.example.com/", "Acme")
	require.NoError(t, err)

	identity := &authflow.Identity{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, mailer.SendResetLink(context.Background(), identity, "carrier-token"))

	assert.Equal(t, "alice@example.com", sender.params.SendTo)
	assert.Equal(t, "[Acme] Reset Password Request", sender.params.Subject)
	assert.Equal(t, "password_reset", sender.params.Tag)
	assert.Contains(t, sender.params.BodyHTML, "https://app.example.com/forgot_password?session=carrier-token")
	assert.Contains(t, sender.params.BodyHTML, "If this wasn't you, ignore this email.")
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "alice@example.com",
		Subject:  "subject",
		BodyHTML: "<p>hi</p>",
	}
	assert.NoError(t, valid.Validate())

	missingTo := valid
	missingTo.SendTo = "not-an-address"
	assert.ErrorIs(t, missingTo.Validate(), email.ErrInvalidParams)

	missingSubject := valid
	missingSubject.Subject = ""
	assert.ErrorIs(t, missingSubject.Validate(), email.ErrInvalidParams)

	missingBody := valid
	missingBody.BodyHTML = ""
	assert.ErrorIs(t, missingBody.Validate(), email.ErrInvalidParams)
}
