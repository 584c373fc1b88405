package infra

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/provision"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/port"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
)

// InitProvisioner wires the topic provisioner using the kafka.* and
// provision.* keys.
func InitProvisioner(logger applog.AppLogger, v *validator.Validate) (port.TopicProvisioner, error) {
	if v == nil {
		v = validator.New()
	}
	cfg := provision.Config{
		ClientID:             viper.GetString("kafka.client_id"),
		RequestTimeoutMillis: viper.GetInt32("provision.request_timeout_ms"),
		TopicConfigs:         viper.GetStringMapString("provision.topic_configs"),
	}
	p, err := provision.NewTopicProvisioner(logger, cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init topic provisioner: %w", err)
	}
	return p, nil
}
