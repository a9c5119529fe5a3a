package service

import (
	"context"
	"errors"

	bookingserrors "marketplace/internal/bookings/errors"
	"marketplace/internal/bookings/repository"
	"marketplace/internal/bookings/validator"
	listingserrors "marketplace/internal/listings/errors"
	notifications "marketplace/internal/notifications/repository"
	paymentserrors "marketplace/internal/payments/errors"
	userserrors "marketplace/internal/users/errors"
	"marketplace/pkg/config"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/model"
	"marketplace/pkg/sanitizer"
	"marketplace/pkg/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

type ListingFinder interface {
	FindByID(ctx context.Context, id string) (*model.Listing, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type PaymentFinder interface {
	FindByID(ctx context.Context, id string) (*model.Payment, error)
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	locks     repository.ListingLockRepository
	listings  ListingFinder
	users     UserFinder
	payments  PaymentFinder
	outbox    notifications.OutboxRepository
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	locks repository.ListingLockRepository,
	listings ListingFinder,
	users UserFinder,
	payments PaymentFinder,
	outbox notifications.OutboxRepository,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		locks:     locks,
		listings:  listings,
		users:     users,
		payments:  payments,
		outbox:    outbox,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)
	dates, err := s.validator.Validate(req)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			return nil, validation.ToAppError(err, "Invalid booking request")
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	listing, user, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}

	lockID := repository.LockID(req.ListingID)
	if err := s.locks.Acquire(ctx, lockID, s.cfg.ListingLockTTL); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This listing is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Internal("Failed to acquire listing lock", err)
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release listing lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		ID:        uuid.NewString(),
		ListingID: req.ListingID,
		UserID:    req.UserID,
		StartDate: dates.Start,
		EndDate:   dates.End,
		PaymentID: req.PaymentID,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlapping, err := s.repo.FindOverlapping(sessCtx, req.ListingID, dates)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if len(overlapping) > 0 {
			return apperrors.DateConflict("Listing not available for the selected dates")
		}

		used, err := s.repo.ExistsForPayment(sessCtx, req.PaymentID)
		if err != nil {
			return apperrors.Internal("Failed to check payment usage", err)
		}
		if used {
			return apperrors.InvalidInput("Payment has already been used for a booking")
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		msg := notifications.NewEmailMessage(model.EmailNotification{
			Kind: model.NotificationBookingConfirmed,
			To:   user.Email,
			Data: map[string]string{
				"bookingId":    booking.ID,
				"listingId":    listing.ID,
				"listingTitle": listing.Title,
				"startDate":    booking.StartDate.Format(dateLayout),
				"endDate":      booking.EndDate.Format(dateLayout),
				"paymentId":    booking.PaymentID,
			},
		})
		if err := s.outbox.Enqueue(sessCtx, msg); err != nil {
			return apperrors.Internal("Failed to queue confirmation email", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "listing_id", req.ListingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"listing_id", booking.ListingID,
		"user_id", booking.UserID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
	)
	return booking, nil
}

// lookup fetches the listing, user and payment concurrently. The payment must
// be settled and belong to the booking user.
func (s *bookingService) lookup(ctx context.Context, req *model.BookingRequest) (*model.Listing, *model.User, error) {
	var (
		listing *model.Listing
		user    *model.User
		payment *model.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listing, err = s.listings.FindByID(gctx, req.ListingID)
		if errors.Is(err, listingserrors.ErrNotFound) {
			return apperrors.NotFound("Listing")
		}
		if err != nil {
			return apperrors.Internal("Failed to retrieve listing", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		user, err = s.users.FindByID(gctx, req.UserID)
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("User")
		}
		if err != nil {
			return apperrors.Internal("Failed to retrieve user", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payment, err = s.payments.FindByID(gctx, req.PaymentID)
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return apperrors.PaymentNotReady("Payment not found or not completed")
		}
		if err != nil {
			return apperrors.Internal("Failed to retrieve payment", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if !payment.Completed() || payment.UserID != req.UserID {
		return nil, nil, apperrors.PaymentNotReady("Payment not found or not completed")
	}
	return listing, user, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	var (
		count    int64
		bookings []*model.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.CountByUser(gctx, userID)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", userID, "error", err)
			return apperrors.Internal("Failed to count bookings", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bookings, err = s.repo.FindByUser(gctx, userID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", err)
			return apperrors.Internal("Failed to retrieve bookings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.ListingID = sanitizer.TrimAndNormalize(req.ListingID)
	req.UserID = sanitizer.TrimAndNormalize(req.UserID)
	req.PaymentID = sanitizer.TrimAndNormalize(req.PaymentID)
}
