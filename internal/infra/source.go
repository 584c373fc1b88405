package infra

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/source"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/port"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
)

// InitLineSource wires the line reader over r and the decoder for binding.
func InitLineSource(logger applog.AppLogger, r io.Reader, binding *entity.OutputBindingConfig, v *validator.Validate) (port.Source, port.ValueDecoder, error) {
	if v == nil {
		v = validator.New()
	}
	cfg := source.Config{
		MaxLineBytes: viper.GetInt("source.max_line_bytes"),
		SkipBlank:    viper.GetBool("source.skip_blank"),
	}
	src, err := source.NewLineSource(logger, r, cfg, v)
	if err != nil {
		return nil, nil, fmt.Errorf("infra: failed to init line source: %w", err)
	}
	dec, err := source.NewLineDecoder(binding)
	if err != nil {
		return nil, nil, fmt.Errorf("infra: failed to init line decoder: %w", err)
	}
	return src, dec, nil
}
