package http

import (
	"github.com/gofiber/fiber/v3"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
)

func Health(ctx fiber.Ctx) error {
	ctx.Status(fiber.StatusOK)
	_ = ctx.JSON("UP!")
	return nil
}

type bindingView struct {
	BrokerConnection       string `json:"broker_connection"`
	Topic                  string `json:"topic"`
	KeyType                string `json:"key_type,omitempty"`
	ValueType              string `json:"value_type,omitempty"`
	ValueKind              string `json:"value_kind"`
	InlineSchema           bool   `json:"inline_schema"`
	AutoCreateTopic        bool   `json:"auto_create_topic"`
	TopicPartitionCount    int32  `json:"topic_partition_count"`
	TopicReplicationFactor int16  `json:"topic_replication_factor"`
}

// Binding reports the active output binding. The inline schema text is not
// echoed, only whether one is configured.
func Binding(b *entity.OutputBindingConfig) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if b == nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no binding configured"})
		}
		view := bindingView{
			BrokerConnection:       b.BrokerConnection,
			Topic:                  b.Topic,
			ValueKind:              b.ValueKind().String(),
			InlineSchema:           b.InlineSchemaText != "",
			AutoCreateTopic:        b.AutoCreateTopic,
			TopicPartitionCount:    b.TopicPartitionCount,
			TopicReplicationFactor: b.TopicReplicationFactor,
		}
		if b.KeyType != nil {
			view.KeyType = b.KeyType.String()
		}
		if t := b.ValueType(); t != nil {
			view.ValueType = t.String()
		}
		return ctx.Status(fiber.StatusOK).JSON(view)
	}
}
