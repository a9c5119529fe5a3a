package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvStripeSecretKey       = "STRIPE_SECRET_KEY"
	EnvStripeWebhookSecret   = "STRIPE_WEBHOOK_SECRET"
	EnvPaymentCurrency       = "PAYMENT_CURRENCY"
	EnvPaymentProductName    = "PAYMENT_PRODUCT_NAME"
	EnvPaymentMaxAmountCents = "PAYMENT_MAX_AMOUNT_CENTS"

	EnvListingLockTTL = "LISTING_LOCK_TTL"

	EnvPasswordResetTTL     = "PASSWORD_RESET_TTL"
	EnvEmailVerificationTTL = "EMAIL_VERIFICATION_TTL"

	EnvOutboxInterval    = "OUTBOX_INTERVAL"
	EnvOutboxBatchSize   = "OUTBOX_BATCH_SIZE"
	EnvOutboxMaxAttempts = "OUTBOX_MAX_ATTEMPTS"
	EnvOutboxEnabled     = "OUTBOX_RELAY_ENABLED"

	EnvNotificationsTopic    = "NOTIFICATIONS_TOPIC"
	EnvNotificationsDLQTopic = "NOTIFICATIONS_DLQ_TOPIC"
	EnvNotificationsGroupID  = "NOTIFICATIONS_GROUP_ID"

	EnvSMTPHost      = "SMTP_HOST"
	EnvSMTPPort      = "SMTP_PORT"
	EnvSMTPUsername  = "SMTP_USERNAME"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvSMTPFrom      = "SMTP_FROM"
	EnvSMTPTLSPolicy = "SMTP_TLS_POLICY"

	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvEnvironment  = "ENV"
)
