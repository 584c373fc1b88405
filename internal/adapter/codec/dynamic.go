package codec

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

// dynamicEncoder serves bindings without a value type: every value is
// dispatched on its runtime type, accepting the same four forms a value type
// may name.
type dynamicEncoder struct {
	avro avroEncoder
}

func newDynamicEncoder(o options) *dynamicEncoder {
	return &dynamicEncoder{avro: avroEncoder{opts: o}}
}

func (e *dynamicEncoder) Encode(ctx context.Context, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return val, nil
	case string:
		return encodeText(ctx, val)
	case entity.SpecificRecord:
		return encodeSpecific(ctx, &e.avro, val)
	case proto.Message:
		return encodeProto(val)
	}
	return nil, apperr.NewEncodeErr(fmt.Sprintf("cannot encode value of type %T without a configured value type", v), nil)
}
