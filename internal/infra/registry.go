package infra

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/codec"
	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/registry"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
)

// InitSchemaRegistry returns the codec option that registers Avro schemas for
// binding's topic, or no options when schema_registry.enabled is false.
func InitSchemaRegistry(logger applog.AppLogger, binding *entity.OutputBindingConfig, v *validator.Validate) ([]codec.Option, error) {
	if !viper.GetBool("schema_registry.enabled") {
		return nil, nil
	}
	if v == nil {
		v = validator.New()
	}
	cfg := registry.Config{
		URLs:          viper.GetStringSlice("schema_registry.urls"),
		Username:      viper.GetString("schema_registry.username"),
		Password:      viper.GetString("schema_registry.password"),
		Compatibility: viper.GetString("schema_registry.compatibility"),
	}
	r, err := registry.NewSchemaRegistry(logger, cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init schema registry: %w", err)
	}
	return []codec.Option{codec.WithSchemaRegistry(r, registry.ValueSubject(binding.Topic))}, nil
}
