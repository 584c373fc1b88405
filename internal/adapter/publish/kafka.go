package publish

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/codec"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/pattern"
)

const (
	defaultRetryAttempts       = 5
	defaultRetryInitialBackoff = 200 * time.Millisecond
	defaultRetryMaxBackoff     = 2 * time.Second
	defaultRetryJitter         = 0.2
	defaultWriteTimeout        = 10 * time.Second
)

type kgoClient interface {
	BeginTransaction() error
	EndTransaction(ctx context.Context, commit kgo.TransactionEndTry) error
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

var newKgoClient = func(opts ...kgo.Opt) (kgoClient, error) { return kgo.NewClient(opts...) }

// KafkaPublisher produces values for a single output binding.
type KafkaPublisher struct {
	log          applog.AppLogger
	client       kgoClient
	cfg          Config
	binding      *entity.OutputBindingConfig
	keyEnc       codec.Encoder
	valueEnc     codec.Encoder
	writeTimeout time.Duration
	retryOpts    []pattern.RetryOption
}

// NewKafkaPublisher validates cfg and binding, selects the key and value
// serializers for the binding and connects to its brokers.
func NewKafkaPublisher(log applog.AppLogger, cfg Config, binding *entity.OutputBindingConfig, v *validator.Validate, opts ...codec.Option) (*KafkaPublisher, error) {
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid kafka publisher config", err)
	}
	if binding == nil {
		return nil, apperr.NewInvalidArgErr("binding config is required", nil)
	}
	if err := v.Struct(binding); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid output binding", err)
	}

	keyEnc, err := codec.NewKeyEncoder(binding.KeyType)
	if err != nil {
		return nil, err
	}
	valueEnc, err := codec.NewValueEncoder(binding, opts...)
	if err != nil {
		return nil, err
	}

	maxAttempts := cfg.MaxRetryAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultRetryAttempts
	}

	initialBackoff := millisecondsOrDefault(cfg.RetryInitialBackoffMS, defaultRetryInitialBackoff)
	maxBackoff := millisecondsOrDefault(cfg.RetryMaxBackoffMS, defaultRetryMaxBackoff)
	if maxBackoff < initialBackoff {
		maxBackoff = initialBackoff
	}

	writeTimeout := secondsOrDefault(cfg.WriteTimeoutSeconds, defaultWriteTimeout)
	jitter := cfg.RetryJitter
	if jitter <= 0 {
		jitter = defaultRetryJitter
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(entity.SplitBrokers(binding.BrokerConnection)...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(binding.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.TransactionalID != "" {
		kopts = append(kopts, kgo.TransactionalID(cfg.TransactionalID))
	}
	client, err := newKgoClient(kopts...)
	if err != nil {
		return nil, apperr.NewInvalidArgErr("failed to init kafka client", err)
	}

	kp := &KafkaPublisher{
		log:          log,
		client:       client,
		cfg:          cfg,
		binding:      binding,
		keyEnc:       keyEnc,
		valueEnc:     valueEnc,
		writeTimeout: writeTimeout,
	}

	kp.retryOpts = []pattern.RetryOption{
		pattern.WithMaxAttempts(maxAttempts),
		pattern.WithInitialDelay(initialBackoff),
		pattern.WithMaxDelay(maxBackoff),
		pattern.WithJitter(jitter),
		pattern.WithShouldRetry(kp.shouldRetry),
		pattern.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			metrics.App().WarningsTotal.WithLabelValues(metrics.ComponentKafka, "produce_retry").Inc()
			kp.log.Warn("Kafka publish attempt failed", "attempt", attempt, "topic", kp.binding.Topic, "retry_in", delay, "err", err)
		}),
	}

	return kp, nil
}

// Publish encodes key and value with the binding's serializers and produces
// them synchronously to the binding topic, retrying transient broker errors.
func (kp *KafkaPublisher) Publish(ctx context.Context, key, value any, headers map[string]string) error {
	topic := kp.binding.Topic
	kind := kp.binding.ValueKind().String()

	keyBytes, err := kp.keyEnc.Encode(ctx, key)
	if err != nil {
		metrics.Binding().EncodeErrorsTotal.WithLabelValues("key", kind).Inc()
		return err
	}
	valueBytes, err := kp.valueEnc.Encode(ctx, value)
	if err != nil {
		metrics.Binding().EncodeErrorsTotal.WithLabelValues("value", kind).Inc()
		kp.log.Error("Failed to encode value", "topic", topic, "kind", kind, "err", err)
		return err
	}

	rec := kp.buildRecord(keyBytes, valueBytes, headers)
	km := metrics.Kafka()
	if err := pattern.Retry(ctx, func(attempt int) error {
		km.ProduceAttemptsTotal.WithLabelValues(topic).Inc()
		start := time.Now()
		writeErr := kp.produce(ctx, rec)
		km.ProduceLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
		if writeErr != nil {
			km.ProduceErrorsTotal.WithLabelValues(topic, errorType(writeErr)).Inc()
			if !kp.shouldRetry(writeErr) {
				kp.log.Error("Kafka publish failed (non-retriable)", "topic", topic, "attempt", attempt, "err", writeErr)
			}
		}
		return writeErr
	}, kp.retryOpts...); err != nil {
		metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentKafka, "produce").Inc()
		return apperr.NewPublishErr("failed to publish value to kafka", err)
	}

	km.ProduceSuccessTotal.WithLabelValues(topic).Inc()
	km.ProduceBytesTotal.WithLabelValues(topic).Add(float64(len(valueBytes)))
	kp.log.Trace("Published value to Kafka", "topic", topic, "kind", kind, "bytes", len(valueBytes))
	return nil
}

func (kp *KafkaPublisher) produce(ctx context.Context, rec *kgo.Record) error {
	// For transactional producers, wrap each record in a short transaction.
	if kp.cfg.TransactionalID != "" {
		if err := kp.client.BeginTransaction(); err != nil {
			return err
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, kp.writeTimeout)
	defer cancel()

	writeErr := kp.client.ProduceSync(attemptCtx, rec).FirstErr()
	if kp.cfg.TransactionalID != "" {
		if writeErr == nil {
			if err := kp.client.EndTransaction(context.Background(), kgo.TryCommit); err != nil {
				writeErr = err
			}
		} else {
			_ = kp.client.EndTransaction(context.Background(), kgo.TryAbort)
		}
	}
	return writeErr
}

// Close releases the underlying Kafka client.
func (kp *KafkaPublisher) Close() {
	kp.client.Close()
}

func (kp *KafkaPublisher) buildRecord(key, value []byte, headers map[string]string) *kgo.Record {
	rec := &kgo.Record{
		Topic: kp.binding.Topic,
		Key:   key,
		Value: value,
	}
	for k, v := range headers {
		if k == "" {
			continue
		}
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return rec
}

func (kp *KafkaPublisher) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	if kerr.IsRetriable(err) {
		return true
	}

	// The topic may still be propagating right after auto-creation.
	if errors.Is(err, kerr.UnknownTopicOrPartition) {
		return true
	}
	return false
}

func errorType(err error) string {
	var ke *kerr.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &ke):
		return ke.Message
	}
	return "other"
}

func millisecondsOrDefault(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
