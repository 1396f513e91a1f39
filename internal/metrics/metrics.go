// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formgate_submissions_written_total",
			Help: "Cumulative number of submission rows appended to the store.",
		})

	SubmissionsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formgate_submissions_skipped_total",
			Help: "Cumulative number of batch entries skipped as non-objects.",
		})

	SheetForwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgate_sheet_forward_total",
			Help: "Cumulative sheet webhook forwards by outcome.",
		},
		[]string{"outcome"}, // ok | fail
	)

	MirrorErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formgate_mirror_errors_total",
			Help: "Cumulative number of failed MySQL mirror inserts.",
		})

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formgate_emails_sent_total",
			Help: "Cumulative number of emails accepted by the transport.",
		})

	EmailsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formgate_emails_failed_total",
			Help: "Cumulative number of transport send failures.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsWritten,
		SubmissionsSkipped,
		SheetForwards,
		MirrorErrors,
		EmailsSent,
		EmailsFailed,
	)
}
