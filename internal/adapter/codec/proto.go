package codec

import (
	"context"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"

	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

func newProtoEncoder(want reflect.Type) Encoder {
	return EncoderFunc(func(_ context.Context, v any) ([]byte, error) {
		if !matchesType(v, want) {
			return nil, typeMismatch(v, want)
		}
		return encodeProto(v)
	})
}

func encodeProto(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, apperr.NewEncodeErr(fmt.Sprintf("%T is not a proto.Message", v), nil)
	}
	b, err := proto.Marshal(m)
	if err != nil {
		codecError("proto_marshal")
		return nil, apperr.NewEncodeErr("failed to marshal protobuf value", err)
	}
	return b, nil
}
