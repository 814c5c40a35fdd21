package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Delivery attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Delivery attempt duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"channel"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Notifications pending dispatch",
		},
	)

	RateLimitDeferrals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_rate_limit_deferrals_total",
			Help: "Dispatch cycles deferred by the rate limiter",
		},
	)

	BudgetEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_evaluations_total",
			Help: "Budget threshold evaluations by outcome",
		},
		[]string{"outcome"}, // outcome: crossed, no_change, skipped, error
	)

	WebhookFeedback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_feedback_events_total",
			Help: "Provider delivery-feedback webhook events by status",
		},
		[]string{"status"},
	)
)

func RecordDispatch(channel, outcome string, duration time.Duration) {
	NotificationsDispatched.WithLabelValues(channel, outcome).Inc()
	DispatchDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

func SetQueueDepth(depth int64) {
	QueueDepth.Set(float64(depth))
}

func IncRateLimitDeferral() {
	RateLimitDeferrals.Inc()
}

func IncBudgetEvaluation(outcome string) {
	BudgetEvaluations.WithLabelValues(outcome).Inc()
}

func IncWebhookFeedback(status string) {
	WebhookFeedback.WithLabelValues(status).Inc()
}
