package fetch

import "github.com/prometheus/client_golang/prometheus"

var fetchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "channel_insight_gateway_fetches_total",
		Help: "Outbound page fetches, by outcome.",
	},
	[]string{"outcome"},
)

// Collectors returns the package's Prometheus collectors for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{fetchesTotal}
}
