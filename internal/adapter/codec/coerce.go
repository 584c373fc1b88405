package codec

import (
	"encoding/json"
	"math"

	"github.com/hamba/avro/v2"
)

// coerceNumbers converts numeric values in a generic record to the Go types
// the Avro writer expects for each declared field: int32 for int, int64 for
// long, float32 for float and float64 for double. Maps and slices are copied,
// never modified. Values that cannot be converted are left for the writer to
// reject.
func coerceNumbers(s avro.Schema, v any) any {
	if v == nil {
		return nil
	}
	switch s.Type() {
	case avro.Ref:
		return coerceNumbers(s.(*avro.RefSchema).Schema(), v)
	case avro.Record:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = e
		}
		for _, f := range s.(*avro.RecordSchema).Fields() {
			if e, ok := out[f.Name()]; ok {
				out[f.Name()] = coerceNumbers(f.Type(), e)
			}
		}
		return out
	case avro.Array:
		items, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(items))
		for i, e := range items {
			out[i] = coerceNumbers(s.(*avro.ArraySchema).Items(), e)
		}
		return out
	case avro.Map:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = coerceNumbers(s.(*avro.MapSchema).Values(), e)
		}
		return out
	case avro.Union:
		// Only an optional single type is unambiguous.
		var only avro.Schema
		for _, t := range s.(*avro.UnionSchema).Types() {
			if t.Type() == avro.Null {
				continue
			}
			if only != nil {
				return v
			}
			only = t
		}
		if only == nil {
			return v
		}
		return coerceNumbers(only, v)
	case avro.Int:
		if n, ok := asInt64(v); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	case avro.Long:
		if n, ok := asInt64(v); ok {
			return n
		}
	case avro.Float:
		if f, ok := asFloat64(v); ok {
			return float32(f)
		}
	case avro.Double:
		if f, ok := asFloat64(v); ok {
			return f
		}
	}
	return v
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
