package pulse

import (
	"strconv"
	"time"

	"github.com/HerbHall/pollnow/internal/execnow"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus execute-now and poll metrics.
var (
	executeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollnow_execute_requests_total",
			Help: "Execute now requests by outcome.",
		},
		[]string{"outcome"},
	)
	executeObjectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollnow_execute_objects_total",
			Help: "Objects in execute now requests by eligibility decision.",
		},
		[]string{"decision"},
	)
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollnow_polls_total",
			Help: "Polls performed, by object type and success.",
		},
		[]string{"type", "success"},
	)
	pollDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pollnow_poll_duration_seconds",
			Help:    "Poll duration in seconds by object type.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

const outcomeQueueFull = "queue_full"

func init() {
	prometheus.MustRegister(executeRequestsTotal, executeObjectsTotal, pollsTotal, pollDuration)
}

func observeOutcome(o execnow.Outcome) {
	executeRequestsTotal.WithLabelValues(string(o.Kind)).Inc()
	executeObjectsTotal.WithLabelValues("eligible").Add(float64(len(o.Eligible)))
	executeObjectsTotal.WithLabelValues("filtered").Add(float64(len(o.Filtered)))
}

// observeQueueFull counts an accepted selection that was turned away
// because the execute queue had no room.
func observeQueueFull() {
	executeRequestsTotal.WithLabelValues(outcomeQueueFull).Inc()
}

func observePoll(typ string, success bool, elapsed time.Duration) {
	pollsTotal.WithLabelValues(typ, strconv.FormatBool(success)).Inc()
	pollDuration.WithLabelValues(typ).Observe(elapsed.Seconds())
}
