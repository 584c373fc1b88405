//go:build integration

package publish

import (
	"context"
	"encoding/binary"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/provision"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/kafkatest"
)

func TestPublish_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker, err := kafkatest.Start(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = broker.Terminate(context.Background()) })

	v := validator.New()
	b := entity.NewOutputBindingConfig(broker.Addr(), "greetings")
	b.AutoCreateTopic = true
	require.NoError(t, b.SetValueType(reflect.TypeOf("")))

	prov, err := provision.NewTopicProvisioner(testLogger{}, provision.Config{ClientID: "it"}, v)
	require.NoError(t, err)
	_, err = prov.Ensure(ctx, b)
	require.NoError(t, err)

	kp, err := NewKafkaPublisher(testLogger{}, Config{ClientID: "it"}, b, v)
	require.NoError(t, err)
	t.Cleanup(kp.Close)

	require.NoError(t, kp.Publish(ctx, int64(42), "hello", map[string]string{"source-line": "1"}))

	rec, err := broker.ConsumeOne(ctx, "greetings", 30*time.Second)
	require.NoError(t, err)
	require.Equal(t, "hello", string(rec.Value))
	require.Equal(t, uint64(42), binary.BigEndian.Uint64(rec.Key))
	require.Len(t, rec.Headers, 1)
	require.Equal(t, "source-line", rec.Headers[0].Key)
}
