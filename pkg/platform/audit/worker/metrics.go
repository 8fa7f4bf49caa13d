package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox relay. A nil *Metrics is a no-op.
type Metrics struct {
	Relayed      prometheus.Counter
	Failed       prometheus.Counter
	BreakerState prometheus.Gauge
}

// NewMetrics registers relay metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Relayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_outbox_relayed_total",
			Help: "Total number of outbox events published to Kafka",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_outbox_relay_failures_total",
			Help: "Total number of failed outbox relay batches",
		}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mintgate_outbox_relay_breaker_state",
			Help: "Relay circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) addRelayed(n int) {
	if m != nil {
		m.Relayed.Add(float64(n))
	}
}

func (m *Metrics) incFailed() {
	if m != nil {
		m.Failed.Inc()
	}
}

func (m *Metrics) setBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
