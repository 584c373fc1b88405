package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

type srClient interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
	SetCompatibility(ctx context.Context, compat sr.SetCompatibility, subjects ...string) []sr.CompatibilityResult
}

var newSRClient = func(opts ...sr.ClientOpt) (srClient, error) { return sr.NewClient(opts...) }

// SchemaRegistry registers value schemas and caches the returned ids per
// subject and schema text, so each schema is registered once per process.
type SchemaRegistry struct {
	log    applog.AppLogger
	client srClient
	cfg    Config

	mu         sync.Mutex
	ids        map[string]int
	compatDone map[string]bool
}

// NewSchemaRegistry validates cfg and builds a franz-go schema registry client.
func NewSchemaRegistry(log applog.AppLogger, cfg Config, v *validator.Validate) (*SchemaRegistry, error) {
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid schema registry config", err)
	}

	opts := []sr.ClientOpt{sr.URLs(cfg.URLs...)}
	if cfg.Username != "" {
		opts = append(opts, sr.BasicAuth(cfg.Username, cfg.Password))
	}
	client, err := newSRClient(opts...)
	if err != nil {
		return nil, apperr.NewInvalidArgErr("failed to init schema registry client", err)
	}

	return &SchemaRegistry{
		log:        log,
		client:     client,
		cfg:        cfg,
		ids:        make(map[string]int),
		compatDone: make(map[string]bool),
	}, nil
}

// Register returns the registry id of schema under subject, registering it on first use.
func (r *SchemaRegistry) Register(ctx context.Context, subject, schema string, kind entity.ValueKind) (int, error) {
	schemaType, err := schemaTypeFor(kind)
	if err != nil {
		return 0, err
	}

	key := subject + "\x00" + schema
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[key]; ok {
		return id, nil
	}

	if err := r.applyCompatibility(ctx, subject); err != nil {
		return 0, err
	}

	ss, err := r.client.CreateSchema(ctx, subject, sr.Schema{Schema: schema, Type: schemaType})
	if err != nil {
		metrics.Binding().SchemaRegistrationsTotal.WithLabelValues("error").Inc()
		metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentRegistry, "create_schema").Inc()
		r.log.Error("Schema registration failed", "subject", subject, "err", err)
		return 0, apperr.NewInternalErr(fmt.Sprintf("failed to register schema for subject %s", subject), err)
	}

	metrics.Binding().SchemaRegistrationsTotal.WithLabelValues("registered").Inc()
	r.log.Info("Registered schema", "subject", subject, "id", ss.ID, "version", ss.Version)
	r.ids[key] = ss.ID
	return ss.ID, nil
}

func (r *SchemaRegistry) applyCompatibility(ctx context.Context, subject string) error {
	if r.cfg.Compatibility == "" || r.compatDone[subject] {
		return nil
	}

	var level sr.CompatibilityLevel
	if err := level.UnmarshalText([]byte(r.cfg.Compatibility)); err != nil {
		return apperr.NewInvalidArgErr("invalid compatibility level", err)
	}
	for _, res := range r.client.SetCompatibility(ctx, sr.SetCompatibility{Level: level}, subject) {
		if res.Err != nil {
			metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentRegistry, "set_compatibility").Inc()
			return apperr.NewInternalErr(fmt.Sprintf("failed to set compatibility for subject %s", subject), res.Err)
		}
	}
	r.compatDone[subject] = true
	return nil
}

func schemaTypeFor(kind entity.ValueKind) (sr.SchemaType, error) {
	switch kind {
	case entity.ValueKindSchemaRecord:
		return sr.TypeAvro, nil
	case entity.ValueKindProtoMessage:
		return sr.TypeProtobuf, nil
	}
	return 0, apperr.NewInvalidArgErr(fmt.Sprintf("value kind %s has no registry schema", kind), nil)
}

// ValueSubject returns the topic-name-strategy subject for topic values.
func ValueSubject(topic string) string {
	return topic + "-value"
}
