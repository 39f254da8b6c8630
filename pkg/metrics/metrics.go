package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreMetrics counts checkout attempts and webhook deliveries by outcome.
type StoreMetrics struct {
	Checkouts     *prometheus.CounterVec
	WebhookEvents *prometheus.CounterVec
}

// New registers and returns the store metrics on the given registerer.
func New(reg prometheus.Registerer) *StoreMetrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vapestore",
		Name:      "checkouts_total",
		Help:      "Total number of checkout attempts by result.",
	}, []string{"result"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vapestore",
		Name:      "payment_webhook_events_total",
		Help:      "Total number of payment webhook deliveries by outcome.",
	}, []string{"outcome"})

	reg.MustRegister(checkouts, webhookEvents)
	return &StoreMetrics{Checkouts: checkouts, WebhookEvents: webhookEvents}
}

// Handler exposes the default Prometheus registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
