// Package qrcode renders otpauth enrollment URIs (or any string) as PNG QR
// codes for authenticator app onboarding.
package qrcode
