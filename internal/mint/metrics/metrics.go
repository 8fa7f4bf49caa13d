package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the mint controller.
type Metrics struct {
	Mints              *prometheus.CounterVec
	MintDuration       prometheus.Histogram
	CollectionsCreated prometheus.Counter
	CollectionUpdates  *prometheus.CounterVec
	GovernanceChanges  *prometheus.CounterVec
}

// New registers the mint metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mints: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_mints_total",
			Help: "Mint attempts by outcome (ok or the rejection code)",
		}, []string{"outcome"}),
		MintDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mintgate_mint_duration_seconds",
			Help:    "Duration of mint transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CollectionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_collections_created_total",
			Help: "Total number of collections created",
		}),
		CollectionUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_collection_updates_total",
			Help: "Collection configuration updates by field",
		}, []string{"field"}),
		GovernanceChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_governance_changes_total",
			Help: "Governance operations by kind",
		}, []string{"kind"}),
	}
}

// ObserveMint records the outcome and duration of a mint.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMint(outcome string, start time.Time) {
	m.Mints.WithLabelValues(outcome).Inc()
	m.MintDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncCollectionCreated() {
	m.CollectionsCreated.Inc()
}

func (m *Metrics) IncCollectionUpdate(field string) {
	m.CollectionUpdates.WithLabelValues(field).Inc()
}

func (m *Metrics) IncGovernance(kind string) {
	m.GovernanceChanges.WithLabelValues(kind).Inc()
}
