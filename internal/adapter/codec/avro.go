package codec

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

// avroEncoder writes Avro binary, optionally behind the registry wire header.
type avroEncoder struct {
	opts options
	// schemas caches parsed writer schemas per record type.
	schemas sync.Map
}

func (e *avroEncoder) frame(ctx context.Context, schema avro.Schema, payload []byte) ([]byte, error) {
	if e.opts.registrar == nil {
		return payload, nil
	}
	id, err := e.opts.registrar.Register(ctx, e.opts.subject, schema.String(), entity.ValueKindSchemaRecord)
	if err != nil {
		codecError("schema_register")
		return nil, apperr.NewEncodeErr("failed to register avro schema", err)
	}
	var h sr.ConfluentHeader
	out, err := h.AppendEncode(make([]byte, 0, len(payload)+5), id, nil)
	if err != nil {
		return nil, apperr.NewEncodeErr("failed to write schema registry header", err)
	}
	return append(out, payload...), nil
}

type specificAvroEncoder struct {
	avroEncoder
	want reflect.Type
}

func newSpecificAvroEncoder(want reflect.Type, o options) *specificAvroEncoder {
	return &specificAvroEncoder{avroEncoder: avroEncoder{opts: o}, want: want}
}

func (e *specificAvroEncoder) Encode(ctx context.Context, v any) ([]byte, error) {
	if !matchesType(v, e.want) {
		return nil, typeMismatch(v, e.want)
	}
	rec, ok := v.(entity.SpecificRecord)
	if !ok {
		return nil, apperr.NewEncodeErr(fmt.Sprintf("%T does not implement SpecificRecord", v), nil)
	}
	return encodeSpecific(ctx, &e.avroEncoder, rec)
}

func encodeSpecific(ctx context.Context, e *avroEncoder, rec entity.SpecificRecord) ([]byte, error) {
	schema, err := e.schemaFor(rec)
	if err != nil {
		return nil, err
	}
	payload, err := avro.Marshal(schema, rec)
	if err != nil {
		codecError("avro_marshal")
		return nil, apperr.NewEncodeErr(fmt.Sprintf("failed to marshal avro record %s", rec.SchemaName()), err)
	}
	return e.frame(ctx, schema, payload)
}

func (e *avroEncoder) schemaFor(rec entity.SpecificRecord) (avro.Schema, error) {
	key := reflect.TypeOf(rec)
	if s, ok := e.schemas.Load(key); ok {
		return s.(avro.Schema), nil
	}
	s, err := avro.Parse(rec.Schema())
	if err != nil {
		codecError("avro_schema")
		return nil, apperr.NewEncodeErr(fmt.Sprintf("invalid avro schema for %s", rec.SchemaName()), err)
	}
	e.schemas.Store(key, s)
	return s, nil
}

type genericAvroEncoder struct {
	avroEncoder
	schema avro.Schema
}

// newGenericAvroEncoder parses schemaText once; values are map[string]any
// records whose numbers are converted to the declared field types.
func newGenericAvroEncoder(schemaText string, o options) (*genericAvroEncoder, error) {
	s, err := avro.Parse(schemaText)
	if err != nil {
		return nil, apperr.NewInvalidArgErr("invalid inline avro schema", err)
	}
	return &genericAvroEncoder{avroEncoder: avroEncoder{opts: o}, schema: s}, nil
}

func (e *genericAvroEncoder) Encode(ctx context.Context, v any) ([]byte, error) {
	if _, ok := v.(map[string]any); !ok {
		return nil, apperr.NewEncodeErr(fmt.Sprintf("generic avro record must be map[string]any, got %T", v), nil)
	}
	payload, err := avro.Marshal(e.schema, coerceNumbers(e.schema, v))
	if err != nil {
		codecError("avro_marshal")
		return nil, apperr.NewEncodeErr("failed to marshal generic avro record", err)
	}
	return e.frame(ctx, e.schema, payload)
}
