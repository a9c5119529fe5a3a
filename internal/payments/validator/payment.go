package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"
)

type PaymentValidator struct {
	validator *validation.Validator
	logger    *logger.Logger
}

func NewPaymentValidator(log *logger.Logger) *PaymentValidator {
	return &PaymentValidator{
		validator: validation.New(),
		logger:    log,
	}
}

func (v *PaymentValidator) ValidateCheckout(req *model.CheckoutRequest) error {
	if err := v.validator.Struct(req); err != nil {
		v.logger.Debug("Checkout validation failed", "error", err)
		return err
	}
	return nil
}

// ParseAmountCents reads a decimal major-unit amount ("49.99") and returns it
// in minor units, bounded to (0, maxCents].
func ParseAmountCents(value string, maxCents int64) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount %q is not a number", value)
	}
	cents := int64(math.Round(f * 100))
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	if cents > maxCents {
		return 0, fmt.Errorf("amount exceeds the maximum of %d cents", maxCents)
	}
	return cents, nil
}
