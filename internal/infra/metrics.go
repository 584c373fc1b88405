package infra

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	imetrics "github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

var promRegistry *prometheus.Registry

// InitMetrics swaps the metrics registerer for a dedicated registry, creates
// the binding collectors eagerly and exposes them on /metrics.
func InitMetrics(app *fiber.App) {
	if app == nil {
		return
	}
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
		promRegistry.MustRegister(collectors.NewGoCollector())
		promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		bi := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "service_build_info",
			Help:        "build info",
			ConstLabels: prometheus.Labels{"service": viper.GetString("service.name"), "instance": viper.GetString("service.instance")},
		}, []string{"version", "rev"})
		promRegistry.MustRegister(bi)
		bi.WithLabelValues(viper.GetString("service.version"), viper.GetString("service.rev")).Set(1)

		imetrics.UseRegisterer(promRegistry)
		_ = imetrics.App()
		_ = imetrics.Kafka()
		_ = imetrics.Binding()
		_ = imetrics.Pipeline()
		_ = imetrics.Source()
	}
	h := promhttp.InstrumentMetricHandler(promRegistry, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	app.Get("/metrics", adaptor.HTTPHandler(h))
}
