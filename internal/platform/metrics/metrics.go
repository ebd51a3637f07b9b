// Package metrics registers the Prometheus instruments shared by the
// services. Each service increments only the counters relevant to it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for one service process.
type Metrics struct {
	UpstreamFailures *prometheus.CounterVec
	AuditPublished   prometheus.Counter
	AuditPersisted   prometheus.Counter
}

// New creates and registers all instruments under the given service prefix.
func New(service string) *Metrics {
	return &Metrics{
		UpstreamFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundflow_" + service + "_upstream_failures_total",
			Help: "Remote sibling-service call failures by dependency.",
		}, []string{"dependency"}),
		AuditPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundflow_" + service + "_audit_published_total",
			Help: "Audit events handed to the channel transport.",
		}),
		AuditPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundflow_" + service + "_audit_persisted_total",
			Help: "Audit events durably persisted by the sink.",
		}),
	}
}
