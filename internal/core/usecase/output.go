package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/port"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

// HeaderSourceLine carries the 1-based input line a record was read from.
const HeaderSourceLine = "source-line"

type OutputService struct {
	log         applog.AppLogger
	binding     *entity.OutputBindingConfig
	provisioner port.TopicProvisioner
	publisher   port.Publisher
	decoder     port.ValueDecoder

	mu    sync.Mutex
	bound bool
	lines atomic.Int64
}

func NewOutputService(log applog.AppLogger, binding *entity.OutputBindingConfig, provisioner port.TopicProvisioner, publisher port.Publisher, decoder port.ValueDecoder) *OutputService {
	return &OutputService{log: log, binding: binding, provisioner: provisioner, publisher: publisher, decoder: decoder}
}

// Bind provisions the binding topic. It succeeds at most once; a failed
// attempt may be retried.
func (s *OutputService) Bind(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound {
		return nil
	}
	if s.binding == nil {
		return apperr.NewInvalidArgErr("binding config is required", nil)
	}

	res, err := s.provisioner.Ensure(ctx, s.binding)
	if err != nil {
		return wrap("failed to provision binding topic", err)
	}
	s.bound = true
	s.log.Info("Output binding ready", "topic", s.binding.Topic, "provision", res, "value_kind", s.binding.ValueKind().String())
	return nil
}

// Emit publishes one key/value pair. Bind must have succeeded first.
func (s *OutputService) Emit(ctx context.Context, key, value any, headers map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	bound := s.bound
	s.mu.Unlock()
	if !bound {
		return apperr.NewInvalidArgErr("output binding is not bound", nil)
	}

	start := time.Now()
	defer func() {
		metrics.Pipeline().EmitLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
	}()

	if err := s.publisher.Publish(ctx, key, value, headers); err != nil {
		s.log.Error("failed to emit value", "topic", s.binding.Topic, "err", err)
		return wrap("failed to emit value", err)
	}
	return nil
}

// HandleLine decodes a raw input line and emits it without a key.
func (s *OutputService) HandleLine(ctx context.Context, line []byte) error {
	n := s.lines.Add(1)
	value, err := s.decoder.Decode(line)
	if err != nil {
		metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentBinding, "decode").Inc()
		return wrap("failed to decode input line "+strconv.FormatInt(n, 10), err)
	}
	return s.Emit(ctx, nil, value, map[string]string{HeaderSourceLine: strconv.FormatInt(n, 10)})
}

// wrap keeps typed application errors intact and wraps everything else.
func wrap(msg string, err error) error {
	var be apperr.BaseError
	if errors.As(err, &be) {
		return err
	}
	return apperr.NewInternalErr(msg, err)
}
