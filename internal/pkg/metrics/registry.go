package metrics

import "github.com/prometheus/client_golang/prometheus"

var reg = prometheus.DefaultRegisterer

// Registerer is where every binding collector is created. Collectors are
// created lazily, so swap it with UseRegisterer before first use.
func Registerer() prometheus.Registerer { return reg }

// UseRegisterer replaces the registerer; nil is ignored.
func UseRegisterer(r prometheus.Registerer) {
	if r != nil {
		reg = r
	}
}
