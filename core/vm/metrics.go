package vm

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects per-opcode execution counts and call-depth observations
// for a running EVM. Wiring is optional: Config.Metrics is nil unless a host
// explicitly constructs one and registers it, matching the teacher's pattern
// of package-level gauges/histograms registered once at startup
// (internal/blockchain.go) rather than metrics threaded through every call.
type Metrics struct {
	opCount   *prometheus.CounterVec
	callDepth prometheus.Histogram
	gasUsed   prometheus.Counter
	reverts   prometheus.Counter
}

// NewMetrics builds a Metrics collector and registers it against reg. Pass
// prometheus.NewRegistry() for an isolated registry, or a shared one (e.g.
// prometheus.DefaultRegisterer) to expose it alongside a host's other
// metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coreevm",
			Name:      "opcodes_executed_total",
			Help:      "Number of times each opcode has been dispatched.",
		}, []string{"op"}),
		callDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coreevm",
			Name:      "call_depth",
			Help:      "Observed call/create nesting depth at frame entry.",
			Buckets:   prometheus.LinearBuckets(0, 64, 16),
		}),
		gasUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coreevm",
			Name:      "gas_used_total",
			Help:      "Cumulative gas charged across all executed frames.",
		}),
		reverts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coreevm",
			Name:      "reverts_total",
			Help:      "Number of frames that terminated via REVERT or an execution error.",
		}),
	}
	reg.MustRegister(m.opCount, m.callDepth, m.gasUsed, m.reverts)
	return m
}

func (m *Metrics) observeOp(op OpCode) {
	m.opCount.WithLabelValues(op.String()).Inc()
}

func (m *Metrics) observeFrame(depth int) {
	m.callDepth.Observe(float64(depth))
}

func (m *Metrics) observeGas(used uint64) {
	m.gasUsed.Add(float64(used))
}

func (m *Metrics) observeRevert() {
	m.reverts.Inc()
}
