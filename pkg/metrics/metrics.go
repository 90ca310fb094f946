package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AITemplateCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mindhaven",
		Name:      "ai_template_calls_total",
		Help:      "Generative template invocations by template and outcome.",
	}, []string{"template", "outcome"})

	LiveSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mindhaven",
		Name:      "live_subscriptions",
		Help:      "Open store subscriptions by topic.",
	}, []string{"topic"})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mindhaven",
		Name:      "websocket_clients",
		Help:      "Connected WebSocket clients.",
	})

	CascadeDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mindhaven",
		Name:      "cascade_deletions_total",
		Help:      "Cascading user deletions by outcome.",
	}, []string{"outcome"})

	CascadeDocuments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mindhaven",
		Name:      "cascade_deleted_documents_total",
		Help:      "Documents removed by committed cascading deletions.",
	})
)

// Handler serves the default registry on an echo route.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
