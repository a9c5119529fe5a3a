package kafkamiddleware

import (
	"context"
	"time"

	"marketplace/pkg/kafka"
	"marketplace/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		args := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.Error("Failed to publish message", append(args, "error", err)...)
		} else {
			log.Debug("Message published", args...)
		}
		return err
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		args := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"retry", msg.GetRetryCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.Warn("Failed to process message", append(args, "error", err)...)
		} else {
			log.Info("Message processed", args...)
		}
		return err
	}
}
