package email

// Config holds the delivery collaborator configuration. The Postmark tokens
// are optional so development environments can run on the dev sender;
// SenderEmail and SupportEmail establish the outbound identity.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
