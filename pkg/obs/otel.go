package obs

import (
	"context"
	"fmt"

	"marketplace/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type ShutdownFunc func(context.Context) error

type TracingConfig struct {
	ServiceName string
	Version     string
	Environment string
	Endpoint    string
}

// InitTracer installs a global OTLP/gRPC tracer provider. With no endpoint
// it only sets the W3C propagator, so spans are no-ops but trace context
// still flows through Kafka headers.
func InitTracer(ctx context.Context, cfg TracingConfig, log *logger.Logger) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Endpoint == "" {
		log.Info("Tracing disabled, no OTLP endpoint configured")
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		log.Warn("Failed to build tracing resource", "error", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Info("Tracing enabled", "endpoint", cfg.Endpoint, "service", cfg.ServiceName)
	return tp.Shutdown, nil
}
