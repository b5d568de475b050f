package metrics

import "github.com/prometheus/client_golang/prometheus"

// Guard check results.
const (
	ResultAllowed = "allowed"
	ResultDenied  = "denied"
	ResultError   = "error"
)

var (
	// GuardChecks counts guard evaluations by guard name and result.
	GuardChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elmo_guard_checks_total",
		Help: "Total number of guard checks by guard and result",
	}, []string{"guard", "result"})
	// LocksHeld reports the number of keys currently held in in-memory
	// lockers. Redis locks live on the server and are not counted.
	LocksHeld = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "elmo_locks_held",
		Help: "Current number of keys held in in-memory lockers",
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterGuardMetrics registers the guard and lock metrics on the provided registry.
func RegisterGuardMetrics(reg prometheus.Registerer) {
	reg.MustRegister(GuardChecks, LocksHeld)
}
