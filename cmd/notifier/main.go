package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"marketplace/internal/notifications/consumer"
	"marketplace/internal/notifications/templates"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/kafka"
	kafkaconfig "marketplace/pkg/kafka/config"
	kafkamw "marketplace/pkg/kafka/middleware"
	"marketplace/pkg/mailer"
	"marketplace/pkg/obs"
)

const ServiceName = "marketplace-notifier"

var version = "dev"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	kcfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName: ServiceName,
		Version:     version,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}

	cfg.SetMongo()

	sender, err := mailer.New(mailer.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPFrom,
		TLSPolicy: cfg.SMTPTLSPolicy,
		Timeout:   cfg.WriteTimeout,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create mail sender", "error", err)
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		cfg.Log.Fatal("Failed to load email templates", "error", err)
	}

	ledger := mongotx.NewEventLedger(cfg.Database(), cfg.WriteTimeout)
	handler := consumer.NewHandler(ledger, renderer, sender, cfg.Log)

	notifications, err := kafka.NewConsumer(
		kcfg,
		cfg.NotificationsTopic,
		cfg.NotificationsGroupID,
		cfg.NotificationsDLQTopic,
		handler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamw.NewMetrics()
	notifications.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))
	notifications.Use(kafkamw.TracingConsumerMiddleware())
	notifications.Use(metrics.ConsumerMiddleware())

	cfg.Log.Info("Starting notifier", "topic", cfg.NotificationsTopic, "group", cfg.NotificationsGroupID)
	if err := notifications.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	cfg.Log.Info("Shutting down notifier", "metrics", metrics.Snapshot())
	if err := notifications.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracer(shutdownCtx); err != nil {
		cfg.Log.Error("Failed to flush traces", "error", err)
	}
	cfg.GracefulShutdown()
}
