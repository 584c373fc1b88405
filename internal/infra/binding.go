package infra

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

// InitOutputBinding builds the binding from the binding.* keys. Only keys that
// are set override the defaults; type names resolve through reg.
func InitOutputBinding(reg *entity.TypeRegistry) (*entity.OutputBindingConfig, error) {
	if reg == nil {
		reg = entity.NewTypeRegistry()
	}
	b := entity.NewEmptyOutputBindingConfig()

	if viper.IsSet("binding.broker_connection") {
		b.BrokerConnection = viper.GetString("binding.broker_connection")
	}
	if viper.IsSet("binding.topic") {
		b.Topic = viper.GetString("binding.topic")
	}
	if viper.IsSet("binding.inline_schema") {
		b.InlineSchemaText = viper.GetString("binding.inline_schema")
	}
	if viper.IsSet("binding.auto_create_topic") {
		b.AutoCreateTopic = viper.GetBool("binding.auto_create_topic")
	}
	if viper.IsSet("binding.topic_partition_count") {
		n := viper.GetInt64("binding.topic_partition_count")
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, apperr.NewInvalidArgErr(fmt.Sprintf("binding.topic_partition_count %d is out of range", n), nil)
		}
		b.TopicPartitionCount = int32(n)
	}
	if viper.IsSet("binding.topic_replication_factor") {
		n := viper.GetInt64("binding.topic_replication_factor")
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, apperr.NewInvalidArgErr(fmt.Sprintf("binding.topic_replication_factor %d is out of range", n), nil)
		}
		b.TopicReplicationFactor = int16(n)
	}

	if name := strings.TrimSpace(viper.GetString("binding.key_type")); name != "" {
		t, err := lookupType(reg, "binding.key_type", name)
		if err != nil {
			return nil, err
		}
		b.KeyType = t
	}
	if name := strings.TrimSpace(viper.GetString("binding.value_type")); name != "" {
		t, err := lookupType(reg, "binding.value_type", name)
		if err != nil {
			return nil, err
		}
		if err := b.SetValueType(t); err != nil {
			var ivt *apperr.InvalidValueTypeErr
			if errors.As(err, &ivt) {
				metrics.Binding().ValueTypeRejectionsTotal.WithLabelValues(ivt.TypeName).Inc()
			}
			return nil, err
		}
	}
	return b, nil
}

func lookupType(reg *entity.TypeRegistry, key, name string) (reflect.Type, error) {
	t, ok := reg.Lookup(name)
	if !ok {
		return nil, apperr.NewInvalidArgErr(fmt.Sprintf("%s: unknown type %q", key, name), nil)
	}
	return t, nil
}
