package kafkaconfig

import (
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// Notifications are consumed from the start of the log the first time a
	// group joins, so nothing written before the notifier came up is lost.
	DefaultConsumerStartOffset    = kafka.FirstOffset
	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 10 * 1024 * 1024
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerSessionTimeout = 10 * time.Second
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 500 * time.Millisecond
)
