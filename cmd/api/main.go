package main

import (
	"context"

	bookinghandler "marketplace/internal/bookings/handler"
	bookingrepo "marketplace/internal/bookings/repository"
	bookingservice "marketplace/internal/bookings/service"
	bookingvalidator "marketplace/internal/bookings/validator"
	listinghandler "marketplace/internal/listings/handler"
	listingrepo "marketplace/internal/listings/repository"
	listingservice "marketplace/internal/listings/service"
	listingvalidator "marketplace/internal/listings/validator"
	outboxrepo "marketplace/internal/notifications/repository"
	"marketplace/internal/notifications/relay"
	paymenthandler "marketplace/internal/payments/handler"
	"marketplace/internal/payments/processor"
	paymentrepo "marketplace/internal/payments/repository"
	paymentservice "marketplace/internal/payments/service"
	paymentvalidator "marketplace/internal/payments/validator"
	profilehandler "marketplace/internal/profiles/handler"
	profilerepo "marketplace/internal/profiles/repository"
	profileservice "marketplace/internal/profiles/service"
	profilevalidator "marketplace/internal/profiles/validator"
	userhandler "marketplace/internal/users/handler"
	userrepo "marketplace/internal/users/repository"
	userservice "marketplace/internal/users/service"
	uservalidator "marketplace/internal/users/validator"
	"marketplace/pkg/app"
	"marketplace/pkg/auth"
	"marketplace/pkg/config"
	"marketplace/pkg/contracts"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/kafka"
	kafkaconfig "marketplace/pkg/kafka/config"
	kafkamw "marketplace/pkg/kafka/middleware"
	"marketplace/pkg/middleware"
	"marketplace/pkg/obs"
)

const ServiceName = "marketplace-api"

var version = "dev"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		ServiceName: ServiceName,
		Version:     version,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}

	cfg.SetMongo()

	cfg.Log.Info("Starting marketplace API", "version", version)
	serverApp := app.NewApplication(cfg)
	serverApp.SkipContentType(paymenthandler.WebhookPath)

	serverApp.OnShutdown(app.ShutdownHook(shutdownTracer))

	outbox := outboxrepo.NewMongoOutboxRepository(cfg)
	if cfg.OutboxRelayEnabled {
		startRelay(serverApp, outbox, cfg)
	}

	serverApp.SetApp(initHandlers(cfg, outbox)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, outbox outboxrepo.OutboxRepository) []contracts.Handler {
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := middleware.NewAuthenticator(issuer, cfg.Log)
	ledger := mongotx.NewEventLedger(cfg.Database(), cfg.WriteTimeout)

	users := userrepo.NewMongoUserRepository(cfg)
	listings := listingrepo.NewMongoListingRepository(cfg)
	payments := paymentrepo.NewMongoPaymentRepository(cfg)
	profiles := profilerepo.NewMongoProfileRepository(cfg)

	userService := userservice.NewUserService(
		users,
		userrepo.NewMongoTokenRepository(cfg),
		outbox,
		issuer,
		uservalidator.NewUserValidator(cfg.Log),
		cfg,
	)

	listingService := listingservice.NewListingService(
		listings,
		listingvalidator.NewListingValidator(cfg.Log),
		cfg,
	)

	paymentService := paymentservice.NewPaymentService(
		payments,
		processor.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		ledger,
		profiles,
		outbox,
		paymentvalidator.NewPaymentValidator(cfg.Log),
		cfg,
	)

	profileService := profileservice.NewProfileService(
		profiles,
		users,
		profilevalidator.NewProfileValidator(cfg.Log),
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		bookingrepo.NewListingLockRepository(cfg),
		listings,
		users,
		payments,
		outbox,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		userhandler.NewUserHandler(userService, cfg.Log),
		listinghandler.NewListingHandler(listingService, authenticator, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentService, authenticator, cfg.Log),
		profilehandler.NewProfileHandler(profileService, authenticator, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, authenticator, cfg.Log),
	}
}

func startRelay(serverApp *app.Application, outbox outboxrepo.OutboxRepository, cfg *config.Config) {
	kcfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kcfg, cfg.NotificationsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafkamw.NewMetrics()
	producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamw.TracingProducerMiddleware())
	producer.Use(metrics.ProducerMiddleware())

	outboxRelay := relay.NewRelay(outbox, producer, cfg)
	outboxRelay.Start(context.Background())

	serverApp.OnShutdown(func(ctx context.Context) error {
		outboxRelay.Stop()
		cfg.Log.Info("Closing Kafka producer", "metrics", metrics.Snapshot())
		return producer.Close()
	})
}
