package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"marketplace/pkg/client"
	"marketplace/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	currencyRegex   = regexp.MustCompile(`^[a-z]{3}$`)
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	StripeSecretKey       string
	StripeWebhookSecret   string
	PaymentCurrency       string
	PaymentProductName    string
	PaymentMaxAmountCents int

	ListingLockTTL time.Duration

	PasswordResetTTL     time.Duration
	EmailVerificationTTL time.Duration

	OutboxRelayEnabled bool
	OutboxInterval     time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int

	NotificationsTopic    string
	NotificationsDLQTopic string
	NotificationsGroupID  string

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string
	SMTPTLSPolicy string

	OTLPEndpoint string
	Environment  string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTTTL:    getEnvDuration(EnvJWTTTL, DefaultJWTTTL),

		StripeSecretKey:       getEnvStr(EnvStripeSecretKey, ""),
		StripeWebhookSecret:   getEnvStr(EnvStripeWebhookSecret, ""),
		PaymentCurrency:       strings.ToLower(getEnvStr(EnvPaymentCurrency, DefaultPaymentCurrency)),
		PaymentProductName:    getEnvStr(EnvPaymentProductName, DefaultPaymentProductName),
		PaymentMaxAmountCents: getEnvNum(EnvPaymentMaxAmountCents, DefaultPaymentMaxAmountCents),

		ListingLockTTL: getEnvDuration(EnvListingLockTTL, DefaultListingLockTTL),

		PasswordResetTTL:     getEnvDuration(EnvPasswordResetTTL, DefaultPasswordResetTTL),
		EmailVerificationTTL: getEnvDuration(EnvEmailVerificationTTL, DefaultEmailVerificationTTL),

		OutboxRelayEnabled: getEnvBool(EnvOutboxEnabled, true),
		OutboxInterval:     getEnvDuration(EnvOutboxInterval, DefaultOutboxInterval),
		OutboxBatchSize:    getEnvNum(EnvOutboxBatchSize, DefaultOutboxBatchSize),
		OutboxMaxAttempts:  getEnvNum(EnvOutboxMaxAttempts, DefaultOutboxMaxAttempts),

		NotificationsTopic:    getEnvStr(EnvNotificationsTopic, DefaultNotificationsTopic),
		NotificationsDLQTopic: getEnvStr(EnvNotificationsDLQTopic, DefaultNotificationsDLQTopic),
		NotificationsGroupID:  getEnvStr(EnvNotificationsGroupID, DefaultNotificationsGroupID),

		SMTPHost:      getEnvStr(EnvSMTPHost, ""),
		SMTPPort:      getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUsername:  getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword:  getEnvStr(EnvSMTPPassword, ""),
		SMTPFrom:      getEnvStr(EnvSMTPFrom, DefaultSMTPFrom),
		SMTPTLSPolicy: getEnvStr(EnvSMTPTLSPolicy, DefaultSMTPTLSPolicy),

		OTLPEndpoint: getEnvStr(EnvOTLPEndpoint, ""),
		Environment:  getEnvStr(EnvEnvironment, DefaultEnvironment),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// Database returns the handle every repository is built on.
func (cfg *Config) Database() *mongo.Database {
	return cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"JWTTTL", cfg.JWTTTL},
		{"ListingLockTTL", cfg.ListingLockTTL},
		{"PasswordResetTTL", cfg.PasswordResetTTL},
		{"EmailVerificationTTL", cfg.EmailVerificationTTL},
		{"OutboxInterval", cfg.OutboxInterval},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	positiveInts := []struct {
		name  string
		value int
	}{
		{"RateLimitRequests", cfg.RateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"PaymentMaxAmountCents", cfg.PaymentMaxAmountCents},
		{"OutboxBatchSize", cfg.OutboxBatchSize},
		{"OutboxMaxAttempts", cfg.OutboxMaxAttempts},
	}
	for _, n := range positiveInts {
		if n.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", n.name, n.value))
		}
	}

	if !currencyRegex.MatchString(cfg.PaymentCurrency) {
		errors = append(errors, fmt.Sprintf("PaymentCurrency must be a 3-letter ISO code, got: %s", cfg.PaymentCurrency))
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		errors = append(errors, "JWTSecret must be at least 16 characters")
	}
	if cfg.SMTPHost != "" && (cfg.SMTPPort < 1 || cfg.SMTPPort > 65535) {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
	}
	switch cfg.SMTPTLSPolicy {
	case "mandatory", "opportunistic", "none":
	default:
		errors = append(errors, fmt.Sprintf("SMTPTLSPolicy must be one of [mandatory, opportunistic, none], got: %s", cfg.SMTPTLSPolicy))
	}

	return joinErrors(errors)
}

// ValidateAPI checks the secrets only the HTTP API needs.
func (cfg *Config) ValidateAPI() error {
	var errors []string
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWTSecret cannot be empty")
	}
	if cfg.StripeSecretKey == "" {
		errors = append(errors, "StripeSecretKey cannot be empty")
	}
	if cfg.StripeWebhookSecret == "" {
		errors = append(errors, "StripeWebhookSecret cannot be empty")
	}
	if cfg.NotificationsTopic == "" {
		errors = append(errors, "NotificationsTopic cannot be empty")
	}
	return joinErrors(errors)
}

func joinErrors(errors []string) error {
	if len(errors) == 0 {
		return nil
	}
	errMsg := "Configuration validation failed:\n"
	for i, err := range errors {
		errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
	}
	return fmt.Errorf("%s", errMsg)
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_ttl", cfg.JWTTTL,
		"stripe_secret_key_set", cfg.StripeSecretKey != "",
		"stripe_webhook_secret_set", cfg.StripeWebhookSecret != "",
		"payment_currency", cfg.PaymentCurrency,
		"payment_max_amount_cents", cfg.PaymentMaxAmountCents,
		"listing_lock_ttl", cfg.ListingLockTTL,
		"password_reset_ttl", cfg.PasswordResetTTL,
		"email_verification_ttl", cfg.EmailVerificationTTL,
		"outbox_relay_enabled", cfg.OutboxRelayEnabled,
		"outbox_interval", cfg.OutboxInterval,
		"outbox_batch_size", cfg.OutboxBatchSize,
		"outbox_max_attempts", cfg.OutboxMaxAttempts,
		"notifications_topic", cfg.NotificationsTopic,
		"notifications_dlq_topic", cfg.NotificationsDLQTopic,
		"notifications_group_id", cfg.NotificationsGroupID,
		"smtp_host", cfg.SMTPHost,
		"smtp_port", cfg.SMTPPort,
		"smtp_password_set", cfg.SMTPPassword != "",
		"smtp_tls_policy", cfg.SMTPTLSPolicy,
		"otlp_endpoint", cfg.OTLPEndpoint,
		"environment", cfg.Environment,
	)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultPaginationPageSize
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
