package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BindingMetrics covers the output binding lifecycle outside of produce calls.
type BindingMetrics struct {
	ValueTypeRejectionsTotal *prometheus.CounterVec
	EncodeErrorsTotal        *prometheus.CounterVec
	TopicProvisionTotal      *prometheus.CounterVec
	SchemaRegistrationsTotal *prometheus.CounterVec
}

var (
	bindingOnce sync.Once
	binding     *BindingMetrics
)

func Binding() *BindingMetrics {
	bindingOnce.Do(func() {
		r := Registerer()
		binding = &BindingMetrics{
			ValueTypeRejectionsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "binding_value_type_rejections_total", Help: "value types rejected while building a binding"},
				[]string{"type"},
			),
			EncodeErrorsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "binding_encode_errors_total", Help: "key/value encode failures by part and value kind"},
				[]string{"part", "kind"},
			),
			TopicProvisionTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "binding_topic_provision_total", Help: "topic provisioning outcomes (created, exists, skipped, error)"},
				[]string{"result"},
			),
			SchemaRegistrationsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{Name: "binding_schema_registrations_total", Help: "schema registry registrations by result"},
				[]string{"result"},
			),
		}
	})
	return binding
}
