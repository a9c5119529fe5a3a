package service

import (
	"context"
	"errors"

	profileserrors "marketplace/internal/profiles/errors"
	"marketplace/internal/profiles/repository"
	"marketplace/internal/profiles/validator"
	userserrors "marketplace/internal/users/errors"
	"marketplace/pkg/config"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/model"
	"marketplace/pkg/sanitizer"
	"marketplace/pkg/validation"
)

// UserFinder resolves the account a profile belongs to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type ProfileService interface {
	UpsertBuyer(ctx context.Context, buyerID string, input *model.BuyerProfileInput) (*model.BuyerProfile, error)
	UpsertVendor(ctx context.Context, vendorID string, input *model.VendorProfileInput) (*model.VendorProfile, error)
	GetDashboard(ctx context.Context, buyerID string) (*model.BuyerDashboard, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	users     UserFinder
	validator *validator.ProfileValidator
	cfg       *config.Config
}

func NewProfileService(repo repository.ProfileRepository, users UserFinder, validator *validator.ProfileValidator, cfg *config.Config) ProfileService {
	return &profileService{
		repo:      repo,
		users:     users,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *profileService) UpsertBuyer(ctx context.Context, buyerID string, input *model.BuyerProfileInput) (*model.BuyerProfile, error) {
	details, ok := validator.PaymentDetails(input)
	if !ok {
		return nil, apperrors.InvalidInput("Invalid payment details")
	}
	if err := s.requireRole(ctx, buyerID, model.RoleBuyer, "Buyer"); err != nil {
		return nil, err
	}

	profile := &model.BuyerProfile{UserID: buyerID, PaymentDetails: details}
	if err := s.repo.UpsertBuyer(ctx, profile); err != nil {
		return nil, apperrors.Internal("Failed to update buyer profile", err)
	}

	s.cfg.Log.Info("Buyer profile updated", "buyer_id", buyerID)
	return profile, nil
}

func (s *profileService) UpsertVendor(ctx context.Context, vendorID string, input *model.VendorProfileInput) (*model.VendorProfile, error) {
	input.BusinessName = sanitizer.TrimAndNormalize(input.BusinessName)
	input.ContactInfo = sanitizer.NormalizeContactInfo(input.ContactInfo)
	input.LogoURL = sanitizer.NormalizeURL(input.LogoURL)

	if err := s.validator.ValidateVendor(input); err != nil {
		return nil, validation.ToAppError(err, "Invalid vendor profile")
	}
	if err := s.requireRole(ctx, vendorID, model.RoleVendor, "Vendor"); err != nil {
		return nil, err
	}

	profile := &model.VendorProfile{
		UserID:       vendorID,
		BusinessName: input.BusinessName,
		ContactInfo:  input.ContactInfo,
		LogoURL:      input.LogoURL,
	}
	if err := s.repo.UpsertVendor(ctx, profile); err != nil {
		return nil, apperrors.Internal("Failed to update vendor profile", err)
	}

	s.cfg.Log.Info("Vendor profile updated", "vendor_id", vendorID)
	return profile, nil
}

func (s *profileService) GetDashboard(ctx context.Context, buyerID string) (*model.BuyerDashboard, error) {
	dashboard, err := s.repo.FindDashboard(ctx, buyerID)
	if err != nil {
		if errors.Is(err, profileserrors.ErrNotFound) {
			return &model.BuyerDashboard{UserID: buyerID}, nil
		}
		return nil, apperrors.Internal("Failed to retrieve dashboard", err)
	}
	return dashboard, nil
}

func (s *profileService) requireRole(ctx context.Context, userID, role, resource string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound(resource)
		}
		return apperrors.Internal("Failed to retrieve user", err)
	}
	if user.Role != role {
		return apperrors.NotFound(resource)
	}
	return nil
}
