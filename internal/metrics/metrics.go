// Package metrics registers the Prometheus counters exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReferencesCreated prometheus.Counter
	ReferencesScored  prometheus.Counter
	NotificationsSent prometheus.Counter
)

func init() {
	ReferencesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "references_created_total",
		Help: "Total number of citation edges created.",
	})
	ReferencesScored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "references_scored_total",
		Help: "Total number of references that received an AI quality score.",
	})
	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_emails_sent_total",
		Help: "Total number of citation notification emails sent.",
	})
	prometheus.MustRegister(ReferencesCreated, ReferencesScored, NotificationsSent)
}
