package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "marketplace"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit    = 100
	DefaultPaginationPageSize = 10
	MaxPaginationPage         = 10_000

	DefaultJWTTTL = 24 * time.Hour

	DefaultPaymentCurrency       = "usd"
	DefaultPaymentProductName    = "Marketplace booking"
	DefaultPaymentMaxAmountCents = 10_000_00

	DefaultListingLockTTL = 10 * time.Second

	DefaultPasswordResetTTL     = 1 * time.Hour
	DefaultEmailVerificationTTL = 48 * time.Hour

	DefaultOutboxInterval    = 2 * time.Second
	DefaultOutboxBatchSize   = 50
	DefaultOutboxMaxAttempts = 10

	DefaultNotificationsTopic    = "marketplace.notifications"
	DefaultNotificationsDLQTopic = "marketplace.notifications.dlq"
	DefaultNotificationsGroupID  = "marketplace-notifier"

	DefaultSMTPPort      = 587
	DefaultSMTPFrom      = "no-reply@marketplace.local"
	DefaultSMTPTLSPolicy = "opportunistic"

	DefaultEnvironment = "dev"
)
