package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the router's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ledgerTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supplychain",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Ledger transactions submitted, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	ledgerConfirmation = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "supplychain",
			Subsystem: "ledger",
			Name:      "confirmation_seconds",
			Help:      "Time from submission to mined receipt.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		},
		[]string{"op"},
	)

	mirrorWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supplychain",
			Subsystem: "mirror",
			Name:      "writes_total",
			Help:      "Metadata store writes, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	mirrorDivergence = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supplychain",
			Subsystem: "mirror",
			Name:      "divergence_total",
			Help:      "Confirmed ledger writes whose mirror write failed.",
		},
		[]string{"op"},
	)

	routerResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supplychain",
			Subsystem: "router",
			Name:      "responses_total",
			Help:      "Responses returned by the request router.",
		},
		[]string{"route", "status"},
	)
)

func init() {
	Registry.MustRegister(
		ledgerTransactions,
		ledgerConfirmation,
		mirrorWrites,
		mirrorDivergence,
		routerResponses,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordLedger(op string, err error, duration time.Duration) {
	ledgerTransactions.WithLabelValues(op, outcome(err)).Inc()
	if err == nil {
		ledgerConfirmation.WithLabelValues(op).Observe(duration.Seconds())
	}
}

func RecordMirror(op string, err error) {
	mirrorWrites.WithLabelValues(op, outcome(err)).Inc()
}

func RecordDivergence(op string) {
	mirrorDivergence.WithLabelValues(op).Inc()
}

func RecordResponse(route string, status int) {
	routerResponses.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
