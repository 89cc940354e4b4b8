package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	AuthorizeSuccess  = prometheus.NewCounter(prometheus.CounterOpts{Name: "payments_authorized_total", Help: "Charges authorized successfully"})
	AuthorizeDeclined = prometheus.NewCounter(prometheus.CounterOpts{Name: "payments_declined_total", Help: "Charges declined or failed at authorization"})
	JobsOpened        = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_opened_total", Help: "Jobs opened after successful payment"})
	RefundsIssued     = prometheus.NewCounter(prometheus.CounterOpts{Name: "refunds_issued_total", Help: "Compensating refunds issued"})
	RefundFailures    = prometheus.NewCounter(prometheus.CounterOpts{Name: "refund_failures_total", Help: "Refunds that exhausted retries and were escalated"})
	WebhookProcessed  = prometheus.NewCounter(prometheus.CounterOpts{Name: "webhook_events_processed_total", Help: "Webhook events processed"})
	WebhookReplays    = prometheus.NewCounter(prometheus.CounterOpts{Name: "webhook_events_replayed_total", Help: "Webhook events skipped as already processed"})
	WebhookStale      = prometheus.NewCounter(prometheus.CounterOpts{Name: "webhook_events_stale_total", Help: "Webhook events ignored as older than local state"})
	RecoveryAttempts  = prometheus.NewCounter(prometheus.CounterOpts{Name: "payout_recovery_attempts_total", Help: "Onboarding recovery links issued"})
	RecoveryExhausted = prometheus.NewCounter(prometheus.CounterOpts{Name: "payout_recovery_exhausted_total", Help: "Recovery sessions frozen after max attempts"})
	AccountsPolled    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "payout_accounts_actionable", Help: "Accounts in the monitor's polling set"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			AuthorizeSuccess,
			AuthorizeDeclined,
			JobsOpened,
			RefundsIssued,
			RefundFailures,
			WebhookProcessed,
			WebhookReplays,
			WebhookStale,
			RecoveryAttempts,
			RecoveryExhausted,
			AccountsPolled,
		)
	})
	return promhttp.Handler()
}
