package model

import "time"

const (
	RoleBuyer  = "buyer"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

type User struct {
	ID            string    `json:"userId" bson:"_id"`
	Email         string    `json:"email" bson:"email"`
	Role          string    `json:"role" bson:"role"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	EmailVerified bool      `json:"emailVerified" bson:"email_verified"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

type BuyerProfile struct {
	UserID         string         `json:"buyerId" bson:"_id"`
	PaymentDetails map[string]any `json:"paymentDetails" bson:"payment_details"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updated_at"`
}

type VendorProfile struct {
	UserID       string    `json:"vendorId" bson:"_id"`
	BusinessName string    `json:"businessName" bson:"business_name"`
	ContactInfo  string    `json:"contactInfo" bson:"contact_info"`
	LogoURL      string    `json:"logoUrl" bson:"logo_url"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// BuyerDashboard aggregates are stored in cents and exposed in major units.
type BuyerDashboard struct {
	UserID          string    `json:"userId" bson:"_id"`
	TotalSpentCents int64     `json:"-" bson:"total_spent_cents"`
	TotalSpent      float64   `json:"totalSpent" bson:"-"`
	TotalBookings   int64     `json:"totalBookings" bson:"total_bookings"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

func (d *BuyerDashboard) FillAmount() *BuyerDashboard {
	d.TotalSpent = CentsToAmount(d.TotalSpentCents)
	return d
}

const (
	TokenPurposePasswordReset     = "password_reset"
	TokenPurposeEmailVerification = "email_verification"
)

// UserToken is a single-use secret. Only the SHA-256 of the token is stored.
type UserToken struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Purpose   string    `bson:"purpose"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	UserID      string `json:"userId"`
	Role        string `json:"role"`
}

// EmailRequest is the body of password-recovery and send-verification.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,max=128"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

// BuyerProfileInput keeps paymentDetails untyped so a non-object can be rejected.
type BuyerProfileInput struct {
	PaymentDetails any `json:"paymentDetails"`
}

type VendorProfileInput struct {
	BusinessName string `json:"businessName" validate:"required,min=2,max=200"`
	ContactInfo  string `json:"contactInfo" validate:"required,max=200"`
	LogoURL      string `json:"logoUrl" validate:"required,url"`
}
