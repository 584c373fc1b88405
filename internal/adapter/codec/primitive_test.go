package codec

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

func TestNewKeyEncoder(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		keyType reflect.Type
		key     any
		want    []byte
		wantErr bool
	}{
		{name: "default int64", keyType: nil, key: int64(1), want: []byte{0, 0, 0, 0, 0, 0, 0, 1}},
		{name: "default accepts int", keyType: nil, key: 258, want: []byte{0, 0, 0, 0, 0, 0, 1, 2}},
		{name: "negative int64", keyType: reflect.TypeOf(int64(0)), key: int64(-1), want: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{name: "nil key", keyType: nil, key: nil, want: nil},
		{name: "int64 rejects string", keyType: nil, key: "k", wantErr: true},
		{name: "int32", keyType: reflect.TypeOf(int32(0)), key: int32(7), want: []byte{0, 0, 0, 7}},
		{name: "int32 rejects int64", keyType: reflect.TypeOf(int32(0)), key: int64(7), wantErr: true},
		{name: "string", keyType: reflect.TypeOf(""), key: "order-1", want: []byte("order-1")},
		{name: "nil string key", keyType: reflect.TypeOf(""), key: nil, want: nil},
		{name: "bytes", keyType: reflect.TypeOf([]byte(nil)), key: []byte{9}, want: []byte{9}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			enc, err := NewKeyEncoder(tc.keyType)
			require.NoError(t, err)
			got, err := enc.Encode(ctx, tc.key)
			if tc.wantErr {
				var ee *apperr.EncodeErr
				require.ErrorAs(t, err, &ee)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNewKeyEncoder_UnsupportedType(t *testing.T) {
	_, err := NewKeyEncoder(reflect.TypeOf(3.14))
	var ia *apperr.InvalidArgErr
	require.ErrorAs(t, err, &ia)
	require.ErrorContains(t, err, "float64")
}
