package service

import (
	"context"
	"errors"
	"time"

	notifications "marketplace/internal/notifications/repository"
	userserrors "marketplace/internal/users/errors"
	"marketplace/internal/users/repository"
	"marketplace/internal/users/validator"
	"marketplace/pkg/auth"
	"marketplace/pkg/config"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/model"
	"marketplace/pkg/sanitizer"
	"marketplace/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 10

type UserService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	RequestPasswordRecovery(ctx context.Context, req *model.EmailRequest) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
	SendVerification(ctx context.Context, req *model.EmailRequest) error
	VerifyEmail(ctx context.Context, req *model.VerifyEmailRequest) error
}

type userService struct {
	repo      repository.UserRepository
	tokens    repository.TokenRepository
	outbox    notifications.OutboxRepository
	issuer    *auth.Issuer
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	tokens repository.TokenRepository,
	outbox notifications.OutboxRepository,
	issuer *auth.Issuer,
	validator *validator.UserValidator,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		tokens:    tokens,
		outbox:    outbox,
		issuer:    issuer,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, validation.ToAppError(err, "Invalid login request")
	}

	invalid := apperrors.Unauthorized("Invalid email or password")
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Warn("Login rejected", "user_id", user.ID)
		return nil, invalid
	}

	token, err := s.issuer.CreateAccessToken(user.ID, user.Role, user.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue access token", err)
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.issuer.TTL().Seconds()),
		UserID:      user.ID,
		Role:        user.Role,
	}, nil
}

func (s *userService) RequestPasswordRecovery(ctx context.Context, req *model.EmailRequest) error {
	return s.issueToken(ctx, req, model.TokenPurposePasswordReset, model.NotificationPasswordRecovery, s.cfg.PasswordResetTTL)
}

func (s *userService) SendVerification(ctx context.Context, req *model.EmailRequest) error {
	return s.issueToken(ctx, req, model.TokenPurposeEmailVerification, model.NotificationEmailVerification, s.cfg.EmailVerificationTTL)
}

// issueToken stores a fresh one-time token and queues the email carrying it
// in the same transaction.
func (s *userService) issueToken(ctx context.Context, req *model.EmailRequest, purpose, kind string, ttl time.Duration) error {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateEmail(req); err != nil {
		return validation.ToAppError(err, "Invalid email")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("User")
		}
		return apperrors.Internal("Failed to retrieve user", err)
	}

	raw, hash, err := newToken()
	if err != nil {
		return apperrors.Internal("Failed to generate token", err)
	}
	expiresAt := time.Now().UTC().Add(ttl)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.tokens.Create(sessCtx, &model.UserToken{
			ID:        hash,
			UserID:    user.ID,
			Purpose:   purpose,
			ExpiresAt: expiresAt,
		}); err != nil {
			return apperrors.Internal("Failed to store token", err)
		}
		msg := notifications.NewEmailMessage(model.EmailNotification{
			Kind: kind,
			To:   user.Email,
			Data: map[string]string{
				"token":     raw,
				"expiresAt": expiresAt.Format(time.RFC3339),
			},
		})
		if err := s.outbox.Enqueue(sessCtx, msg); err != nil {
			return apperrors.Internal("Failed to queue email", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to issue user token", "user_id", user.ID, "purpose", purpose, "error", err)
		return err
	}

	s.cfg.Log.Info("User token issued", "user_id", user.ID, "purpose", purpose, "expires_at", expiresAt)
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	req.Token = sanitizer.TrimAndNormalize(req.Token)
	if err := s.validator.ValidateResetPassword(req); err != nil {
		return validation.ToAppError(err, "Password must be at least 8 characters")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), passwordHashCost)
	if err != nil {
		return apperrors.Internal("Failed to hash password", err)
	}

	var userID string
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		token, err := s.tokens.Consume(sessCtx, hashToken(req.Token), model.TokenPurposePasswordReset)
		if err != nil {
			if errors.Is(err, userserrors.ErrTokenNotFound) {
				return apperrors.InvalidInput("Invalid or expired token")
			}
			return apperrors.Internal("Failed to verify token", err)
		}
		userID = token.UserID
		if err := s.repo.UpdatePassword(sessCtx, token.UserID, string(passwordHash)); err != nil {
			if errors.Is(err, userserrors.ErrNotFound) {
				return apperrors.InvalidInput("Invalid or expired token")
			}
			return apperrors.Internal("Failed to update password", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Password reset", "user_id", userID)
	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, req *model.VerifyEmailRequest) error {
	req.Token = sanitizer.TrimAndNormalize(req.Token)
	if err := s.validator.ValidateVerifyEmail(req); err != nil {
		return validation.ToAppError(err, "Invalid token")
	}

	var userID string
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		token, err := s.tokens.Consume(sessCtx, hashToken(req.Token), model.TokenPurposeEmailVerification)
		if err != nil {
			if errors.Is(err, userserrors.ErrTokenNotFound) {
				return apperrors.InvalidInput("Invalid token")
			}
			return apperrors.Internal("Failed to verify token", err)
		}
		userID = token.UserID
		if err := s.repo.MarkEmailVerified(sessCtx, token.UserID); err != nil {
			if errors.Is(err, userserrors.ErrNotFound) {
				return apperrors.InvalidInput("Invalid token")
			}
			return apperrors.Internal("Failed to verify email", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Email verified", "user_id", userID)
	return nil
}
