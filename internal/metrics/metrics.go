package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TransitionsTotal считает переходы статусов откликов по действию и результату.
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_transitions_total",
			Help: "Total number of application state transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// GateRejectionsTotal считает отказы гейткипера по причине.
	GateRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_rejections_total",
			Help: "Total number of compliance gate rejections by reason",
		},
		[]string{"reason"},
	)

	// PaymentLogEntriesTotal считает записи платёжного журнала по типу.
	PaymentLogEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_log_entries_total",
			Help: "Total number of payment log entries by entry type",
		},
		[]string{"entry_type"},
	)

	// ShadowOrdersTotal считает синтезированные теневые ордера.
	ShadowOrdersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shadow_orders_total",
			Help: "Total number of shadow escrow orders synthesized during reconciliation",
		},
	)
)

// Register регистрирует все метрики в глобальном реестре Prometheus.
func Register() {
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(GateRejectionsTotal)
	prometheus.MustRegister(PaymentLogEntriesTotal)
	prometheus.MustRegister(ShadowOrdersTotal)
}
