// Package metrics exposes Prometheus instrumentation for the scoring service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teamscore"

// Recorder owns a private registry and every service metric.
// All methods are safe on a nil receiver so callers may omit instrumentation.
type Recorder struct {
	registry *prometheus.Registry

	marksSubmitted   *prometheus.CounterVec
	bulkSaves        *prometheus.CounterVec
	lockTransitions  *prometheus.CounterVec
	guardRejections  *prometheus.CounterVec
	eventsBroadcast  *prometheus.CounterVec
	broadcastDropped prometheus.Counter
	roomClients      prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpPanics          prometheus.Counter
}

// New creates a Recorder registered on a fresh registry, with Go runtime and
// process collectors attached
func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry)
}

// NewWithRegistry creates a Recorder on the given registry
func NewWithRegistry(registry *prometheus.Registry) *Recorder {
	auto := promauto.With(registry)

	return &Recorder{
		registry: registry,

		marksSubmitted: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "marks_submitted_total",
			Help:      "Judge marks accepted, by judge role",
		}, []string{"judge_type"}),

		bulkSaves: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "bulk_saves_total",
			Help:      "Bulk team score saves, by whether a record was created",
		}, []string{"created"}),

		lockTransitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "lock_transitions_total",
			Help:      "Score record lock state changes",
		}, []string{"to"}),

		guardRejections: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "rejections_total",
			Help:      "Requests rejected by the competition context guard, by reason",
		}, []string{"reason"}),

		eventsBroadcast: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_broadcast_total",
			Help:      "Room events broadcast, by event name",
		}, []string{"event"}),

		broadcastDropped: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_dropped_total",
			Help:      "Room events dropped because a client buffer was full",
		}),

		roomClients: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "clients",
			Help:      "Connected room clients",
		}),

		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status_code"}),

		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		httpPanics: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Handler panics recovered and answered with a 500",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) MarkSubmitted(judgeType string) {
	if r == nil {
		return
	}
	r.marksSubmitted.WithLabelValues(judgeType).Inc()
}

func (r *Recorder) BulkSaved(created bool) {
	if r == nil {
		return
	}
	r.bulkSaves.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// LockTransition counts a move into the locked or unlocked state
func (r *Recorder) LockTransition(locked bool) {
	if r == nil {
		return
	}
	to := "unlocked"
	if locked {
		to = "locked"
	}
	r.lockTransitions.WithLabelValues(to).Inc()
}

func (r *Recorder) GuardRejected(reason string) {
	if r == nil {
		return
	}
	r.guardRejections.WithLabelValues(reason).Inc()
}

func (r *Recorder) EventBroadcast(event string) {
	if r == nil {
		return
	}
	r.eventsBroadcast.WithLabelValues(event).Inc()
}

func (r *Recorder) EventDropped() {
	if r == nil {
		return
	}
	r.broadcastDropped.Inc()
}

func (r *Recorder) ClientConnected() {
	if r == nil {
		return
	}
	r.roomClients.Inc()
}

func (r *Recorder) ClientDisconnected() {
	if r == nil {
		return
	}
	r.roomClients.Dec()
}

// HTTPRequest records one completed request
func (r *Recorder) HTTPRequest(route, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (r *Recorder) PanicRecovered() {
	if r == nil {
		return
	}
	r.httpPanics.Inc()
}
