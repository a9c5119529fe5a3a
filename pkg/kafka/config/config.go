package kafkaconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"marketplace/pkg/logger"
)

type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int
	ProducerCompression  string

	ConsumerStartOffset    int64
	ConsumerMinBytes       int
	ConsumerMaxBytes       int
	ConsumerMaxWait        time.Duration
	ConsumerSessionTimeout time.Duration
	ConsumerMaxRetries     int
	ConsumerRetryBackoff   time.Duration
}

// Load reads the Kafka settings from the environment and validates them.
func Load() (*Config, error) {
	var brokers []string
	for _, b := range strings.Split(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	cfg := &Config{
		Brokers: brokers,

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression),

		ConsumerStartOffset:    getEnvInt64(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset),
		ConsumerMinBytes:       getEnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
		ConsumerMaxBytes:       getEnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
		ConsumerMaxWait:        getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerSessionTimeout: getEnvDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
		ConsumerMaxRetries:     getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
		ConsumerRetryBackoff:   getEnvDuration(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []string

	if len(cfg.Brokers) == 0 {
		errs = append(errs, "at least one Kafka broker is required")
	}

	positive := []struct {
		name  string
		value int64
	}{
		{"ProducerMaxAttempts", int64(cfg.ProducerMaxAttempts)},
		{"ProducerBatchTimeout", int64(cfg.ProducerBatchTimeout)},
		{"ConsumerMinBytes", int64(cfg.ConsumerMinBytes)},
		{"ConsumerMaxBytes", int64(cfg.ConsumerMaxBytes)},
		{"ConsumerMaxWait", int64(cfg.ConsumerMaxWait)},
		{"ConsumerSessionTimeout", int64(cfg.ConsumerSessionTimeout)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", p.name))
		}
	}

	switch cfg.ProducerCompression {
	case "none", "gzip", "snappy", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}

	switch cfg.ProducerRequireAcks {
	case -1, 0, 1:
	default:
		errs = append(errs, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerStartOffset < -2 {
		errs = append(errs, fmt.Sprintf("ConsumerStartOffset must be -1 (newest), -2 (oldest), or >= 0, got: %d", cfg.ConsumerStartOffset))
	}

	if cfg.ConsumerMaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}

	if len(errs) > 0 {
		return fmt.Errorf("kafka configuration invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
	)
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
