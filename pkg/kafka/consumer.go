package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkaconfig "marketplace/pkg/kafka/config"
	"marketplace/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group and commits each
// message only after it was handled or parked on the dead-letter topic.
type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	topic        string
	groupID      string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafkaconfig.Config, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		SessionTimeout: cfg.ConsumerSessionTimeout,
		StartOffset:    cfg.ConsumerStartOffset,
		Logger:         kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:    errorLogger(log, "consumer"),
	})

	c := newConsumer(reader, topic, groupID, handler, log)
	c.maxRetries = cfg.ConsumerMaxRetries
	c.retryBackoff = cfg.ConsumerRetryBackoff

	if dlqTopic != "" {
		c.dlqWriter = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  dlqTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			Compression:            compression(cfg.ProducerCompression),
			MaxAttempts:            3,
			AllowAutoTopicCreation: true,
			Logger:                 kafka.LoggerFunc(func(string, ...any) {}),
			ErrorLogger:            errorLogger(log, "dlq"),
		}
	}

	return c, nil
}

func newConsumer(r messageReader, topic, groupID string, handler MessageHandler, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:       r,
		topic:        topic,
		groupID:      groupID,
		handler:      handler,
		log:          log,
		retryBackoff: kafkaconfig.DefaultConsumerRetryBackoff,
	}
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start blocks consuming messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	handler := c.chain()
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrConsumerClosed) {
				return err
			}
			c.log.Error("failed to fetch message", "topic", c.topic, "error", err)
			if !sleepCtx(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		msg := fromKafkaMessage(km)
		if err := c.process(ctx, handler, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("message left uncommitted",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"event_id", msg.GetEventID(),
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil {
			c.log.Error("failed to commit offset", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *Consumer) chain() MessageHandler {
	handler := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler
}

// process runs handler with retries for transient failures. A message that
// cannot be handled is parked on the dead-letter topic; the returned error
// is non-nil only when it could not be parked either.
func (c *Consumer) process(ctx context.Context, handler MessageHandler, msg Message) error {
	var err error
	for {
		err = handler(ctx, msg)
		if err == nil {
			return nil
		}
		retries := msg.GetRetryCount()
		if !ShouldRetry(err, retries, c.maxRetries) {
			break
		}
		c.log.Warn("retrying message",
			"event_id", msg.GetEventID(),
			"attempt", retries+1,
			"max_retries", c.maxRetries,
			"error", err,
		)
		msg.IncrementRetryCount()
		if !sleepCtx(ctx, c.retryBackoff*time.Duration(retries+1)) {
			return ctx.Err()
		}
	}

	if c.dlqWriter == nil {
		c.log.Error("dropping message after handler failure", "event_id", msg.GetEventID(), "error", err)
		return nil
	}
	if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
		return fmt.Errorf("dead-letter publish failed: %w (handler error: %v)", dlqErr, err)
	}
	c.log.Warn("message sent to DLQ", "event_id", msg.GetEventID(), "error", err)
	return nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	msg.Headers = cloneHeaders(msg.Headers)
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers[HeaderDLQError] = originalErr.Error()
	msg.Headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	msg.Headers[HeaderDLQGroup] = c.groupID
	msg.Timestamp = time.Now()

	return c.dlqWriter.WriteMessages(ctx, toKafkaMessage(msg))
}

func fromKafkaMessage(km kafka.Message) Message {
	msg := Message{
		Key:       string(km.Key),
		Value:     km.Value,
		Headers:   make(map[string]string, len(km.Headers)),
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Timestamp: km.Time,
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Close waits for Start to return (the caller cancels its context first)
// and releases the reader and dead-letter writer.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	err := c.reader.Close()
	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
