package kafkamiddleware

import (
	"context"

	"marketplace/pkg/kafka"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "marketplace/pkg/kafka"

// TracingProducerMiddleware opens a producer span and injects its context
// into the message headers.
func TracingProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "publish "+msg.Topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination.name", msg.Topic),
				attribute.String("messaging.message.id", msg.GetEventID()),
			),
		)
		defer span.End()

		otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Headers))

		err := next(ctx, msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

// TracingConsumerMiddleware continues the trace carried in the headers.
func TracingConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Headers))
		ctx, span := otel.Tracer(tracerName).Start(ctx, "process "+msg.Topic,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination.name", msg.Topic),
				attribute.String("messaging.message.id", msg.GetEventID()),
				attribute.Int64("messaging.kafka.offset", msg.Offset),
			),
		)
		defer span.End()

		err := next(ctx, msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
