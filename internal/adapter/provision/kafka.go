package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

const defaultRequestTimeoutMillis int32 = 15000

// Result describes what Ensure did.
type Result = entity.ProvisionResult

const (
	ResultSkipped = entity.ProvisionSkipped
	ResultCreated = entity.ProvisionCreated
	ResultExists  = entity.ProvisionExists
)

type kafkaRequester interface {
	Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error)
}

var newKgoClient = func(opts ...kgo.Opt) (kafkaRequester, func(), error) {
	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, err
	}
	return cl, cl.Close, nil
}

// TopicProvisioner creates binding topics on demand.
type TopicProvisioner struct {
	log applog.AppLogger
	cfg Config
	v   *validator.Validate
}

func NewTopicProvisioner(log applog.AppLogger, cfg Config, v *validator.Validate) (*TopicProvisioner, error) {
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid topic provisioner config", err)
	}
	if cfg.RequestTimeoutMillis == 0 {
		cfg.RequestTimeoutMillis = defaultRequestTimeoutMillis
	}
	return &TopicProvisioner{log: log, cfg: cfg, v: v}, nil
}

// Ensure creates the binding's topic when AutoCreateTopic is set. An existing
// topic counts as success; its partition layout is not checked.
func (p *TopicProvisioner) Ensure(ctx context.Context, binding *entity.OutputBindingConfig) (Result, error) {
	if binding == nil {
		return "", apperr.NewInvalidArgErr("binding config is required", nil)
	}
	if !binding.AutoCreateTopic {
		metrics.Binding().TopicProvisionTotal.WithLabelValues(string(ResultSkipped)).Inc()
		return ResultSkipped, nil
	}

	spec := TopicSpec{
		Topic:             binding.Topic,
		PartitionCount:    binding.TopicPartitionCount,
		ReplicationFactor: binding.TopicReplicationFactor,
	}
	if err := p.v.Struct(spec); err != nil {
		return "", apperr.NewInvalidArgErr("invalid topic provisioning settings", err)
	}

	brokers := entity.SplitBrokers(binding.BrokerConnection)
	if len(brokers) == 0 {
		return "", apperr.NewInvalidArgErr("broker connection is required to provision a topic", nil)
	}
	cl, closeFn, err := newKgoClient(kgo.SeedBrokers(brokers...), kgo.ClientID(p.cfg.ClientID))
	if err != nil {
		metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentProvisioner, "client_init").Inc()
		return "", apperr.NewProvisionErr("failed to init kafka admin client", err)
	}
	defer closeFn()

	res, err := p.createTopic(ctx, cl, spec)
	if err != nil {
		metrics.Binding().TopicProvisionTotal.WithLabelValues("error").Inc()
		metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentProvisioner, "create_topic").Inc()
		p.log.Error("Topic provisioning failed", "topic", spec.Topic, "err", err)
		return "", err
	}

	metrics.Binding().TopicProvisionTotal.WithLabelValues(string(res)).Inc()
	p.log.Info("Topic provisioned", "topic", spec.Topic, "result", res,
		"partitions", spec.PartitionCount, "replication_factor", spec.ReplicationFactor)
	return res, nil
}

func (p *TopicProvisioner) createTopic(ctx context.Context, cl kafkaRequester, spec TopicSpec) (Result, error) {
	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = p.cfg.RequestTimeoutMillis

	t := kmsg.NewCreateTopicsRequestTopic()
	t.Topic = spec.Topic
	t.NumPartitions = spec.PartitionCount
	t.ReplicationFactor = spec.ReplicationFactor
	for k, v := range p.cfg.TopicConfigs {
		c := kmsg.NewCreateTopicsRequestTopicConfig()
		c.Name = k
		c.Value = kmsg.StringPtr(v)
		t.Configs = append(t.Configs, c)
	}
	req.Topics = append(req.Topics, t)

	respAny, err := cl.Request(ctx, &req)
	if err != nil {
		return "", apperr.NewProvisionErr("create topics request failed", err)
	}
	resp, ok := respAny.(*kmsg.CreateTopicsResponse)
	if !ok {
		return "", apperr.NewProvisionErr(fmt.Sprintf("unexpected create topics response %T", respAny), nil)
	}

	for _, tr := range resp.Topics {
		if tr.Topic != spec.Topic {
			continue
		}
		err := kerr.ErrorForCode(tr.ErrorCode)
		if err == nil {
			return ResultCreated, nil
		}
		if errors.Is(err, kerr.TopicAlreadyExists) {
			return ResultExists, nil
		}
		msg := err.Error()
		if tr.ErrorMessage != nil {
			msg = *tr.ErrorMessage
		}
		return "", apperr.NewProvisionErr(fmt.Sprintf("create topic %s: %s", spec.Topic, msg), err)
	}
	return "", apperr.NewProvisionErr(fmt.Sprintf("topic %q missing in create topics response", spec.Topic), nil)
}
