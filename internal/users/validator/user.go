package validator

import (
	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"
)

type UserValidator struct {
	validator *validation.Validator
	logger    *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validator: validation.New(),
		logger:    log,
	}
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	return v.validate(req)
}

func (v *UserValidator) ValidateEmail(req *model.EmailRequest) error {
	return v.validate(req)
}

func (v *UserValidator) ValidateResetPassword(req *model.ResetPasswordRequest) error {
	return v.validate(req)
}

func (v *UserValidator) ValidateVerifyEmail(req *model.VerifyEmailRequest) error {
	return v.validate(req)
}

func (v *UserValidator) validate(req any) error {
	if err := v.validator.Struct(req); err != nil {
		v.logger.Debug("User request validation failed", "error", err)
		return err
	}
	return nil
}
