// Package metrics exposes the ledger's prometheus instrumentation on the
// default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meshpay_rewards_payments_created_total",
			Help: "Total number of payment records created",
		},
	)

	DistributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshpay_rewards_distributions_total",
			Help: "Total number of reward distribution attempts",
		},
		[]string{"variant", "status"},
	)

	TransferFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meshpay_rewards_transfer_failures_total",
			Help: "Total number of failed value transfers",
		},
	)

	PaymentReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshpay_rewards_payment_reads_total",
			Help: "Total number of payment record reads",
		},
		[]string{"source"},
	)
)
