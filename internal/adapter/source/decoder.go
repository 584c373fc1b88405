package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

// LineDecoder turns a raw input line into a value the binding's serializer
// accepts.
type LineDecoder struct {
	kind    entity.ValueKind
	base    reflect.Type
	generic bool
}

// NewLineDecoder resolves how lines are decoded for binding. Record and
// message types are decoded from JSON into a fresh pointer of the bound type.
func NewLineDecoder(binding *entity.OutputBindingConfig) (*LineDecoder, error) {
	if binding == nil {
		return nil, apperr.NewInvalidArgErr("binding config is required", nil)
	}
	d := &LineDecoder{kind: binding.ValueKind()}

	switch d.kind {
	case entity.ValueKindSchemaRecord, entity.ValueKindProtoMessage:
		t := binding.ValueType()
		if t.Kind() == reflect.Interface {
			return nil, apperr.NewInvalidArgErr(fmt.Sprintf("cannot decode input lines into interface type %s", t), nil)
		}
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		d.base = t
	case entity.ValueKindUnset:
		d.generic = binding.InlineSchemaText != ""
	}
	return d, nil
}

func (d *LineDecoder) Decode(line []byte) (any, error) {
	switch d.kind {
	case entity.ValueKindText:
		return string(line), nil
	case entity.ValueKindSchemaRecord:
		v := reflect.New(d.base)
		if err := json.Unmarshal(line, v.Interface()); err != nil {
			return nil, apperr.NewInvalidArgErr(fmt.Sprintf("line is not a JSON %s", d.base), err)
		}
		return v.Interface(), nil
	case entity.ValueKindProtoMessage:
		m, ok := reflect.New(d.base).Interface().(proto.Message)
		if !ok {
			return nil, apperr.NewInvalidArgErr(fmt.Sprintf("*%s is not a proto.Message", d.base), nil)
		}
		if err := protojson.Unmarshal(line, m); err != nil {
			return nil, apperr.NewInvalidArgErr(fmt.Sprintf("line is not a JSON %s", d.base), err)
		}
		return m, nil
	}

	if d.generic {
		return decodeGeneric(line)
	}
	return bytes.Clone(line), nil
}

// decodeGeneric reads a JSON object for generic Avro records. Integral
// numbers become int64 and the rest float64.
func decodeGeneric(line []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, apperr.NewInvalidArgErr("line is not a JSON object", err)
	}
	if m == nil {
		return nil, apperr.NewInvalidArgErr("line is not a JSON object", nil)
	}
	return normalizeNumbers(m).(map[string]any), nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, e := range val {
			val[k] = normalizeNumbers(e)
		}
		return val
	case []any:
		for i, e := range val {
			val[i] = normalizeNumbers(e)
		}
		return val
	}
	return v
}
