// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WithdrawalsTotal counts withdrawal requests by outcome (submitted, rejected, failed)
	WithdrawalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creator_withdrawals_total",
		Help: "Withdrawal requests by outcome",
	}, []string{"outcome"})

	// WithdrawalsReconciled counts withdrawals driven to a terminal state by reconciliation
	WithdrawalsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creator_withdrawals_reconciled_total",
		Help: "Withdrawals reconciled to a terminal state",
	}, []string{"status"})

	// ReconciliationRuns counts reconciliation scans
	ReconciliationRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creator_reconciliation_runs_total",
		Help: "Reconciliation loop executions",
	})

	// GatewayErrors counts payout provider call failures by operation
	GatewayErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creator_gateway_errors_total",
		Help: "Payout gateway call failures by operation",
	}, []string{"operation"})

	// DatabaseConnectionsGauge exposes sql.DB pool stats
	DatabaseConnectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "creator_database_connections",
		Help: "Database connection pool state",
	}, []string{"state"})
)
