package validator

import (
	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"
)

type BookingValidator struct {
	validator *validation.Validator
	logger    *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validator: validation.New(),
		logger:    log,
	}
}

// Validate checks required fields and returns the parsed, inclusive date range.
func (v *BookingValidator) Validate(req *model.BookingRequest) (model.DateRange, error) {
	if err := v.validator.Struct(req); err != nil {
		v.logger.Debug("Booking validation failed", "error", err)
		return model.DateRange{}, err
	}
	return model.ParseDateRange(req.StartDate, req.EndDate)
}
