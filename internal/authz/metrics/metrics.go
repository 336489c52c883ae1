package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for authorization decisions.
type Metrics struct {
	DecisionsAllowed prometheus.Counter
	DecisionsDenied  *prometheus.CounterVec
}

// New creates a Metrics instance with all authorization metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionsAllowed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_authz_decisions_allowed_total",
			Help: "Total number of requests allowed by the authorization pipeline",
		}),
		DecisionsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_authz_decisions_denied_total",
			Help: "Total number of requests denied, by pipeline stage",
		}, []string{"stage"}),
	}
}

// ObserveDecision records one authorization outcome. stage is empty for
// allowed decisions and names the denying stage otherwise (resolve,
// ownership, role).
func (m *Metrics) ObserveDecision(allowed bool, stage string) {
	if m == nil {
		return
	}
	if allowed {
		m.DecisionsAllowed.Inc()
		return
	}
	m.DecisionsDenied.WithLabelValues(stage).Inc()
}
