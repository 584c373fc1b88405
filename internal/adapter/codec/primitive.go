package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

var (
	int64Type  = reflect.TypeOf(int64(0))
	int32Type  = reflect.TypeOf(int32(0))
	stringType = reflect.TypeOf("")
	bytesType  = reflect.TypeOf([]byte(nil))
)

func encodeRawBytes(_ context.Context, v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, apperr.NewEncodeErr(fmt.Sprintf("raw bytes binding got %T", v), nil)
	}
	return b, nil
}

func encodeText(_ context.Context, v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, apperr.NewEncodeErr(fmt.Sprintf("text binding got %T", v), nil)
	}
	if !utf8.ValidString(s) {
		return nil, apperr.NewEncodeErr("text value is not valid UTF-8", nil)
	}
	return []byte(s), nil
}

// NewKeyEncoder returns the key serializer for keyType. A nil keyType means
// int64. Integers are written big-endian; a nil key produces a nil key.
func NewKeyEncoder(keyType reflect.Type) (Encoder, error) {
	switch keyType {
	case nil, int64Type:
		return EncoderFunc(encodeInt64Key), nil
	case int32Type:
		return EncoderFunc(encodeInt32Key), nil
	case stringType:
		return nullable(encodeText), nil
	case bytesType:
		return nullable(encodeRawBytes), nil
	}
	return nil, apperr.NewInvalidArgErr(fmt.Sprintf("unsupported key type %s: expected int64, int32, string or []byte", keyType), nil)
}

func nullable(f EncoderFunc) EncoderFunc {
	return func(ctx context.Context, v any) ([]byte, error) {
		if v == nil {
			return nil, nil
		}
		return f(ctx, v)
	}
}

func encodeInt64Key(_ context.Context, v any) ([]byte, error) {
	var n int64
	switch k := v.(type) {
	case nil:
		return nil, nil
	case int64:
		n = k
	case int:
		n = int64(k)
	case int32:
		n = int64(k)
	default:
		return nil, apperr.NewEncodeErr(fmt.Sprintf("int64 key got %T", v), nil)
	}
	return binary.BigEndian.AppendUint64(nil, uint64(n)), nil
}

func encodeInt32Key(_ context.Context, v any) ([]byte, error) {
	var n int32
	switch k := v.(type) {
	case nil:
		return nil, nil
	case int32:
		n = k
	default:
		return nil, apperr.NewEncodeErr(fmt.Sprintf("int32 key got %T", v), nil)
	}
	return binary.BigEndian.AppendUint32(nil, uint32(n)), nil
}
