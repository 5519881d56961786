package authflow

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// validate is shared across requests; tag parsing is cached per type.
var validate = validator.New(validator.WithRequiredStructEnabled())

// InitRequest starts a login: password check, unverified token.
type InitRequest struct {
	Username string `validate:"required,max=150"`
	Password string `validate:"required"`
}

// VerifyRequest upgrades an unverified token with a one-time password.
type VerifyRequest struct {
	Token string `validate:"required"`
	OTP   string `validate:"required,numeric"`
}

// RotateRequest replaces the caller's TOTP secret after proving possession
// of the current one.
type RotateRequest struct {
	OTP string `validate:"required,numeric"`
}

// InitiateResetRequest starts a reset session. Ident is a username or an
// email address.
type InitiateResetRequest struct {
	Ident string `validate:"required,max=254"`
}

// ConsumeResetRequest completes a reset session with a new password.
type ConsumeResetRequest struct {
	Session     string `validate:"required"`
	NewPassword string `validate:"required,min=8,max=128"`
}

func (r InitRequest) Validate() error          { return wrapValidation(validate.Struct(r)) }
func (r VerifyRequest) Validate() error        { return wrapValidation(validate.Struct(r)) }
func (r RotateRequest) Validate() error        { return wrapValidation(validate.Struct(r)) }
func (r InitiateResetRequest) Validate() error { return wrapValidation(validate.Struct(r)) }
func (r ConsumeResetRequest) Validate() error  { return wrapValidation(validate.Struct(r)) }

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrInvalidRequest, err)
}
