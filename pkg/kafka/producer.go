package kafka

import (
	"context"
	"fmt"
	"sync"

	kafkaconfig "marketplace/pkg/kafka/config"
	"marketplace/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

// Publisher is what the outbox relay depends on.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer     messageWriter
	topic      string
	log        *logger.Logger
	middleware []ProducerMiddleware
	closed     bool
	mu         sync.RWMutex
}

type ProducerMiddleware func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error

func NewProducer(cfg *kafkaconfig.Config, topic string, log *logger.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           requiredAcks(cfg.ProducerRequireAcks),
		Compression:            compression(cfg.ProducerCompression),
		MaxAttempts:            cfg.ProducerMaxAttempts,
		BatchTimeout:           cfg.ProducerBatchTimeout,
		AllowAutoTopicCreation: true,
		Logger:                 kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:            errorLogger(log, "producer"),
	}

	return newProducer(writer, topic, log), nil
}

func newProducer(w messageWriter, topic string, log *logger.Logger) *Producer {
	return &Producer{
		writer: w,
		topic:  topic,
		log:    log,
	}
}

func (p *Producer) Use(middleware ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware)
}

// Publish writes msg synchronously; a nil error means the broker acknowledged it.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	chain := append([]ProducerMiddleware(nil), p.middleware...)
	p.mu.RUnlock()

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}
	msg.Topic = p.topic
	msg.Headers = cloneHeaders(msg.Headers)

	handler := p.publishInternal
	for i := len(chain) - 1; i >= 0; i-- {
		mw := chain[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}

	return handler(ctx, msg)
}

func (p *Producer) publishInternal(ctx context.Context, msg Message) error {
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		return NewTransientError("failed to write message", err)
	}
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func toKafkaMessage(msg Message) kafka.Message {
	km := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

func compression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	case "none":
		return compress.None
	default:
		return compress.Snappy
	}
}

func requiredAcks(n int) kafka.RequiredAcks {
	switch n {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

func errorLogger(log *logger.Logger, component string) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...any) {
		log.Error("kafka client error", "component", component, "detail", fmt.Sprintf(msg, args...))
	})
}
