package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(schedulerScansTotal, schedulerDispatchesTotal) }

var schedulerScansTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_scans_total",
		Help: "Scheduler scan passes by result.",
	},
	[]string{"result"}, // 'ok' | 'error'
)

var schedulerDispatchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_dispatches_total",
		Help: "Due definitions handed to the delivery engine, by outcome.",
	},
	[]string{"outcome"}, // 'ok' | 'setup_failed' | 'suppressed'
)

func IncScan(result string) {
	schedulerScansTotal.WithLabelValues(norm(result)).Inc()
}

func IncDispatch(outcome string) {
	schedulerDispatchesTotal.WithLabelValues(norm(outcome)).Inc()
}
