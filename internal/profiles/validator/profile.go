package validator

import (
	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"
)

type ProfileValidator struct {
	validator *validation.Validator
	logger    *logger.Logger
}

func NewProfileValidator(log *logger.Logger) *ProfileValidator {
	return &ProfileValidator{
		validator: validation.New(),
		logger:    log,
	}
}

func (v *ProfileValidator) ValidateVendor(input *model.VendorProfileInput) error {
	if err := v.validator.Struct(input); err != nil {
		v.logger.Debug("Vendor profile validation failed", "error", err)
		return err
	}
	return nil
}

// PaymentDetails returns the details as an object, or false when they are
// missing or not a JSON object.
func PaymentDetails(input *model.BuyerProfileInput) (map[string]any, bool) {
	details, ok := input.PaymentDetails.(map[string]any)
	if !ok || details == nil {
		return nil, false
	}
	return details, true
}
