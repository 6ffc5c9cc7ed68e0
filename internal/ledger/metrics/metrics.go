// Package metrics holds the Prometheus instruments for the ledger engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	AssetsCreated prometheus.Counter
	Transfers     prometheus.Counter
	Mints         prometheus.Counter
	Burns         prometheus.Counter
	RejectedOps   *prometheus.CounterVec
}

// New creates and registers all ledger metrics.
func New() *Metrics {
	return &Metrics{
		AssetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_assets_created_total",
			Help: "Total number of assets registered",
		}),
		Transfers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Total number of completed transfers",
		}),
		Mints: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_mints_total",
			Help: "Total number of completed mints",
		}),
		Burns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_burns_total",
			Help: "Total number of completed burns",
		}),
		RejectedOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rejected_operations_total",
			Help: "Ledger operations rejected before any state change, by error code",
		}, []string{"code"}),
	}
}

// IncrementRejected records one rejected operation under its error code.
func (m *Metrics) IncrementRejected(code string) {
	m.RejectedOps.WithLabelValues(code).Inc()
}
