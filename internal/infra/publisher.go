package infra

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/codec"
	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/publish"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/port"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
)

// InitPublisher wires the Kafka publisher for binding using the kafka.* keys.
func InitPublisher(logger applog.AppLogger, binding *entity.OutputBindingConfig, v *validator.Validate, opts ...codec.Option) (port.Publisher, error) {
	if logger == nil {
		return nil, fmt.Errorf("infra: logger is required to init publisher")
	}
	if v == nil {
		v = validator.New()
	}

	cfg := publish.Config{
		ClientID:              viper.GetString("kafka.client_id"),
		TransactionalID:       viper.GetString("kafka.transactional_id"),
		MaxRetryAttempts:      viper.GetInt("kafka.max_retry_attempts"),
		RetryInitialBackoffMS: viper.GetInt("kafka.retry_initial_backoff_ms"),
		RetryMaxBackoffMS:     viper.GetInt("kafka.retry_max_backoff_ms"),
		RetryJitter:           viper.GetFloat64("kafka.retry_jitter"),
		WriteTimeoutSeconds:   viper.GetInt("kafka.write_timeout_seconds"),
	}

	publisher, err := publish.NewKafkaPublisher(logger, cfg, binding, v, opts...)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init publisher: %w", err)
	}
	return publisher, nil
}
