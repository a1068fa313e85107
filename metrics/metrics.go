// Package metrics holds the service-wide Prometheus collectors, registered
// on the default registry and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Total emails accepted by the SMTP server.",
	})

	DigestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "digests_sent_total",
		Help: "Total digest emails built and handed to the mailer.",
	})

	FeedFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_fetch_failures_total",
		Help: "Total per-account feed fetches that failed and were skipped.",
	})

	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broadcast_recipient_failures_total",
		Help: "Total recipients that failed during a broadcast run.",
	})
)
