package kafkaconfig

const (
	EnvKafkaBrokers = "KAFKA_BROKERS"

	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"

	EnvKafkaConsumerStartOffset    = "KAFKA_CONSUMER_START_OFFSET"
	EnvKafkaConsumerMinBytes       = "KAFKA_CONSUMER_MIN_BYTES"
	EnvKafkaConsumerMaxBytes       = "KAFKA_CONSUMER_MAX_BYTES"
	EnvKafkaConsumerMaxWait        = "KAFKA_CONSUMER_MAX_WAIT"
	EnvKafkaConsumerSessionTimeout = "KAFKA_CONSUMER_SESSION_TIMEOUT"
	EnvKafkaConsumerMaxRetries     = "KAFKA_CONSUMER_MAX_RETRIES"
	EnvKafkaConsumerRetryBackoff   = "KAFKA_CONSUMER_RETRY_BACKOFF"
)
