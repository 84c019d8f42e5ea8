package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for a solve run.
	Registry = prometheus.NewRegistry()

	// TabuIterations counts tabu iterations by outcome (improved when the
	// best-known solution improved, accepted otherwise).
	TabuIterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tabu_iterations_total", Help: "Tabu search iterations by outcome."},
		[]string{"outcome"},
	)
	// BestCost tracks the best-known Solution cost over the run.
	BestCost = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "tabu_best_cost", Help: "Best-known solution cost so far."},
	)
	// MovesEvaluated counts candidate moves evaluated by family
	// (intra_swap, inter_swap, insert).
	MovesEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "moves_evaluated_total", Help: "Candidate moves evaluated by family."},
		[]string{"family"},
	)
	// BuilderStrategyCost records the final cost each constructive
	// strategy produced.
	BuilderStrategyCost = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "builder_strategy_cost", Help: "Constructive builder strategy result cost.", Buckets: prometheus.DefBuckets},
		[]string{"strategy"},
	)
	// OracleLatency tracks CostOracle.Travel call latency in seconds.
	OracleLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "oracle_travel_latency_seconds", Help: "CostOracle.Travel call latency.", Buckets: prometheus.DefBuckets},
	)
	// FleetReductions counts fleet-optimizer route-removal attempts by
	// outcome (committed, reverted).
	FleetReductions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fleet_reductions_total", Help: "Fleet optimizer route removal attempts by outcome."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on Registry, once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(TabuIterations)
		Registry.MustRegister(BestCost)
		Registry.MustRegister(MovesEvaluated)
		Registry.MustRegister(BuilderStrategyCost)
		Registry.MustRegister(OracleLatency)
		Registry.MustRegister(FleetReductions)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
