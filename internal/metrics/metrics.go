// Package metrics exposes Prometheus collectors for puzzle sessions. The
// collectors register on the default registry and are served by the HTTP
// surface under /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pour outcomes.
const (
	OutcomeMoved    = "moved"
	OutcomeNoOp     = "no_op"
	OutcomeRejected = "rejected"
)

// Solve results.
const (
	ResultSolved     = "solved"
	ResultUnsolvable = "unsolvable"
	ResultLimit      = "limit"
	ResultCancelled  = "cancelled"
)

var (
	poursTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jugs_pours_total",
		Help: "Pour requests by outcome",
	}, []string{"outcome"})

	rollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jugs_rollbacks_total",
		Help: "Successful history rollbacks",
	})

	resetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jugs_resets_total",
		Help: "Session setups and resets",
	})

	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jugs_solves_total",
		Help: "Solver invocations by result",
	}, []string{"result"})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jugs_solve_duration_seconds",
		Help:    "Wall time of a solver search",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12), // 10µs to ~40s
	})

	statesExplored = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jugs_solver_states_explored",
		Help:    "Distinct states dequeued per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	solutionLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jugs_solution_length",
		Help:    "Number of pours in found solutions",
		Buckets: prometheus.LinearBuckets(0, 2, 16),
	})
)

// RecordPour counts a pour request.
func RecordPour(outcome string) {
	poursTotal.WithLabelValues(outcome).Inc()
}

// RecordRollback counts a rollback.
func RecordRollback() {
	rollbacksTotal.Inc()
}

// RecordReset counts a setup or reset.
func RecordReset() {
	resetsTotal.Inc()
}

// RecordSolve records one search. length is ignored unless result is ResultSolved.
func RecordSolve(result string, elapsed time.Duration, explored, length int) {
	solvesTotal.WithLabelValues(result).Inc()
	solveDuration.Observe(elapsed.Seconds())
	statesExplored.Observe(float64(explored))
	if result == ResultSolved {
		solutionLength.Observe(float64(length))
	}
}
