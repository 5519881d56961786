package email

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/dmitrymomot/authkit/pkg/authflow"
)

// resetBodyTemplate is the transactional reset message: a plain link plus
// an ignore-notice for recipients who didn't ask for it.
var resetBodyTemplate = template.Must(template.New("reset_link").Parse(strings.TrimSpace(`
<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If this wasn't you, ignore this email.</p>
<p>{{.Product}}</p>
`)))

// ResetLinkMailer adapts an EmailSender to the authentication flow's
// delivery contract: it turns a reset carrier token into a clickable link
// and mails it to the identity's address.
type ResetLinkMailer struct {
	sender  EmailSender
	baseURL string
	product string
}

// NewResetLinkMailer creates the reset-link delivery collaborator.
// baseURL is the public origin the link points at, e.g. "https://app.example.com".
func NewResetLinkMailer(sender EmailSender, baseURL, product string) (*ResetLinkMailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: baseURL must be an absolute URL", ErrInvalidConfig)
	}
	if product == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidConfig)
	}

	return &ResetLinkMailer{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		product: product,
	}, nil
}

// SendResetLink implements authflow.ResetLinkSender.
func (m *ResetLinkMailer) SendResetLink(ctx context.Context, identity *authflow.Identity, carrierToken string) error {
	link := fmt.Sprintf("%s/forgot_password?session=%s", m.baseURL, url.QueryEscape(carrierToken))

	var body strings.Builder
	if err := resetBodyTemplate.Execute(&body, struct {
		Link    string
		Product string
	}{Link: link, Product: m.product}); err != nil {
		return fmt.Errorf("%w: render body: %v", ErrFailedToSendEmail, err)
	}

	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   identity.Email,
		Subject:  fmt.Sprintf("[%s] Reset Password Request", m.product),
		BodyHTML: body.String(),
		Tag:      "password_reset",
	})
}
