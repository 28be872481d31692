package incidents

import (
	"github.com/bissquit/incident-tracker/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	incidentMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "incidents",
			Name:      "mutations_total",
			Help:      "Total incident mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	incidentsExported = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "incidents",
			Name:      "exported_rows_total",
			Help:      "Total incident rows written to exports",
		},
	)
)

// recordMutation records the outcome of a create, update or delete.
func recordMutation(operation, result string) {
	incidentMutations.WithLabelValues(operation, result).Inc()
}

func recordExport(rows int) {
	incidentsExported.Add(float64(rows))
}
