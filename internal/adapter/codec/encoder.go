package codec

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

// Encoder serializes a record key or value.
type Encoder interface {
	Encode(ctx context.Context, v any) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, v any) ([]byte, error)

func (f EncoderFunc) Encode(ctx context.Context, v any) ([]byte, error) { return f(ctx, v) }

// Registrar registers a schema under a subject and returns its registry id.
type Registrar interface {
	Register(ctx context.Context, subject, schema string, kind entity.ValueKind) (int, error)
}

type options struct {
	registrar Registrar
	subject   string
}

// Option customizes NewValueEncoder.
type Option func(*options)

// WithSchemaRegistry makes schema-driven encoders register their Avro schema
// under subject and prefix payloads with the registry wire header.
func WithSchemaRegistry(r Registrar, subject string) Option {
	return func(o *options) {
		o.registrar = r
		o.subject = subject
	}
}

// NewValueEncoder picks the value serializer for cfg. The choice follows the
// value kind resolved when the value type was set; with no value type, an
// inline schema selects generic Avro records and otherwise the encoder
// dispatches on the runtime type of each value.
func NewValueEncoder(cfg *entity.OutputBindingConfig, opts ...Option) (Encoder, error) {
	if cfg == nil {
		return nil, apperr.NewInvalidArgErr("binding config is required", nil)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	want := cfg.ValueType()
	switch cfg.ValueKind() {
	case entity.ValueKindRawBytes:
		return EncoderFunc(encodeRawBytes), nil
	case entity.ValueKindText:
		return EncoderFunc(encodeText), nil
	case entity.ValueKindSchemaRecord:
		return newSpecificAvroEncoder(want, o), nil
	case entity.ValueKindProtoMessage:
		return newProtoEncoder(want), nil
	}

	if cfg.InlineSchemaText != "" {
		return newGenericAvroEncoder(cfg.InlineSchemaText, o)
	}
	return newDynamicEncoder(o), nil
}

// matchesType reports whether v can stand in for a value of type want.
func matchesType(v any, want reflect.Type) bool {
	if want == nil {
		return true
	}
	got := reflect.TypeOf(v)
	if got == nil {
		return false
	}
	if got == want || got.AssignableTo(want) {
		return true
	}
	return got.Kind() == reflect.Pointer && got.Elem() == want
}

// codecError counts serializer library failures; type mismatches are counted
// by the caller per binding.
func codecError(reason string) {
	metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentCodec, reason).Inc()
}

func typeMismatch(v any, want reflect.Type) error {
	return apperr.NewEncodeErr(fmt.Sprintf("value of type %T does not match configured value type %s", v, want), nil)
}
