package authflow

import (
	"github.com/dmitrymomot/authkit/pkg/qrcode"
	"github.com/dmitrymomot/authkit/pkg/totp"
)

// EnrollmentURI builds the otpauth:// URI for the identity's secret, with
// the same digit count the flow verifies against.
func (s *Service) EnrollmentURI(identity *Identity, secret string) (string, error) {
	account := identity.Email
	if account == "" {
		account = identity.Username
	}

	return totp.EnrollmentURI(totp.EnrollmentParams{
		Secret:      secret,
		AccountName: account,
		Issuer:      s.issuer,
		Digits:      s.otpDigits,
		Step:        totp.DefaultStep,
	})
}

// EnrollmentQR renders the enrollment URI as a PNG for authenticator app
// onboarding. Size is in pixels; zero uses the generator default.
func (s *Service) EnrollmentQR(identity *Identity, secret string, size int) ([]byte, error) {
	uri, err := s.EnrollmentURI(identity, secret)
	if err != nil {
		return nil, err
	}
	return qrcode.Generate(uri, size)
}
