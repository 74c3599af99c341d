// Package metrics defines and registers all custom Prometheus metrics for the
// VideoTube API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "videotube"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts session lifecycle operations.
// Labels:
//   - event: "register", "login", "logout", "refresh", "change_password"
//   - result: "success" or "failure"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication operations, by event and result.",
	},
	[]string{"event", "result"},
)

// TokenRejectionsTotal counts requests rejected by the auth middleware.
// Label:
//   - reason: "missing", "invalid", "revoked", "unknown_user"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected by access token verification.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests answered with 429.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// MediaUploadsTotal counts profile media update requests.
// Labels:
//   - kind: "avatar" or "cover_image"
//   - result: "success" or "failure"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of profile media uploads, by kind and result.",
	},
	[]string{"kind", "result"},
)

// MediaCleanupTotal counts processed cleanup jobs.
// Label:
//   - result: "deleted", "not_found", "error", "dropped"
var MediaCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_cleanup_total",
		Help:      "Total number of media cleanup jobs, labelled by outcome.",
	},
	[]string{"result"},
)

// MediaCleanupQueueDepth tracks the jobs waiting in each cleanup worker channel.
// Label:
//   - worker_id: numeric worker index
var MediaCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "media_cleanup_queue_depth",
		Help:      "Current number of cleanup jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// MediaCleanupDuration measures a single storage delete call.
var MediaCleanupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_cleanup_duration_seconds",
		Help:      "Duration of media deletes issued by the cleanup workers.",
		Buckets:   prometheus.DefBuckets,
	},
)

// Result returns the label value for an operation outcome.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
