package entity

import (
	"reflect"

	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

const (
	DefaultTopicPartitionCount    int32 = 1
	DefaultTopicReplicationFactor int16 = 1

	valueTypeField = "ValueType"
)

// OutputBindingConfig describes how a single output value is published to a
// Kafka topic. Only the value type is validated here; broker, topic and the
// provisioning fields are checked by whoever consumes the config.
//
// The config is meant to be populated once and then handed off read-only. It
// is not safe for concurrent mutation.
type OutputBindingConfig struct {
	// BrokerConnection is the bootstrap broker list, e.g. "broker:9092".
	BrokerConnection string `validate:"required"`
	Topic            string `validate:"required"`

	// KeyType selects the key serializer. Nil means int64.
	KeyType reflect.Type `validate:"-"`

	// InlineSchemaText is an Avro schema used to encode generic records when
	// no value type is set.
	InlineSchemaText string

	AutoCreateTopic bool
	// TopicPartitionCount and TopicReplicationFactor only apply when
	// AutoCreateTopic is true.
	TopicPartitionCount    int32
	TopicReplicationFactor int16

	valueType reflect.Type
	valueKind ValueKind
}

// NewOutputBindingConfig returns a config targeting topic on brokerConnection
// with every other field at its default.
func NewOutputBindingConfig(brokerConnection, topic string) *OutputBindingConfig {
	c := NewEmptyOutputBindingConfig()
	c.BrokerConnection = brokerConnection
	c.Topic = topic
	return c
}

// NewEmptyOutputBindingConfig returns a config with defaults only, to be
// populated field by field.
func NewEmptyOutputBindingConfig() *OutputBindingConfig {
	return &OutputBindingConfig{
		TopicPartitionCount:    DefaultTopicPartitionCount,
		TopicReplicationFactor: DefaultTopicReplicationFactor,
	}
}

// ValueType returns the configured value type, or nil when unset.
func (c *OutputBindingConfig) ValueType() reflect.Type {
	return c.valueType
}

// ValueKind returns the serializer family resolved when the value type was set.
func (c *OutputBindingConfig) ValueKind() ValueKind {
	return c.valueKind
}

// SetValueType sets the value type. A nil t clears it. A non-nil t must be
// []byte, string, a SpecificRecord or a proto.Message; otherwise an
// *apperr.InvalidValueTypeErr is returned and the config is left untouched.
func (c *OutputBindingConfig) SetValueType(t reflect.Type) error {
	if t == nil {
		c.valueType = nil
		c.valueKind = ValueKindUnset
		return nil
	}

	kind, ok := ClassifyValueType(t)
	if !ok {
		return apperr.NewInvalidValueTypeErr(valueTypeField, typeName(t), acceptedValueForms)
	}

	c.valueType = t
	c.valueKind = kind
	return nil
}
