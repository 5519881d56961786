package totp

import (
	"fmt"
	"net/url"
)

// EnrollmentParams describes an otpauth:// URI handed to authenticator apps.
type EnrollmentParams struct {
	Secret      string    // Base32-encoded secret (required)
	AccountName string    // user identifier, usually username or email (required)
	Issuer      string    // service name shown in the authenticator app (required)
	Step        int       // validity window in seconds; DefaultStep when zero
	Digits      int       // OTP length (required)
	Algorithm   Algorithm // AlgorithmSHA1 when empty
}

// EnrollmentURI builds a Key Uri Format string
// (https://github.com/google/google-authenticator/wiki/Key-Uri-Format)
// for onboarding an authenticator app with the given secret.
func EnrollmentURI(params EnrollmentParams) (string, error) {
	if params.Secret == "" || !validSecretRegex.MatchString(params.Secret) {
		return "", ErrInvalidSecret
	}
	if params.AccountName == "" {
		return "", ErrMissingAccountName
	}
	if params.Issuer == "" {
		return "", ErrMissingIssuer
	}
	if params.Digits <= 0 || params.Digits > 10 {
		return "", ErrInvalidDigits
	}
	if params.Step == 0 {
		params.Step = DefaultStep
	}
	if params.Step < 0 {
		return "", ErrInvalidStep
	}
	if params.Algorithm == "" {
		params.Algorithm = AlgorithmSHA1
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", string(params.Algorithm))
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Step))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}
