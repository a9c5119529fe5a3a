package validator

import (
	"fmt"

	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"
)

type ListingValidator struct {
	validator *validation.Validator
	logger    *logger.Logger
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	return &ListingValidator{
		validator: validation.New(),
		logger:    log,
	}
}

func (v *ListingValidator) Validate(input *model.ListingInput) error {
	if err := v.validator.Struct(input); err != nil {
		v.logger.Debug("Listing validation failed", "error", err)
		return err
	}
	return nil
}

// ParseAvailability converts wire windows into date ranges, rejecting
// malformed dates and windows that end before they start.
func ParseAvailability(windows []model.DateWindow) ([]model.DateRange, error) {
	ranges := make([]model.DateRange, 0, len(windows))
	for i, w := range windows {
		r, err := w.Parse()
		if err != nil {
			return nil, fmt.Errorf("availability[%d]: %w", i, err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
