package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsSubmittedTotal counts stored reports by category and urgency.
	ReportsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "reports",
		Name:      "submitted_total",
		Help:      "Total number of maintenance reports submitted, labeled by category and urgency.",
	}, []string{"category", "urgency"})

	// SubmissionFailuresTotal counts submissions that failed after validation.
	SubmissionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "reports",
		Name:      "submission_failures_total",
		Help:      "Total number of report submissions that failed to store.",
	})

	// AttachmentsAcceptedTotal counts staged files by kind.
	AttachmentsAcceptedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "attachments",
		Name:      "accepted_total",
		Help:      "Total number of staged attachments, labeled by kind.",
	}, []string{"kind"})

	// AttachmentsRejectedTotal counts skipped files by kind and reason.
	AttachmentsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "attachments",
		Name:      "rejected_total",
		Help:      "Total number of rejected attachments, labeled by kind and reason.",
	}, []string{"kind", "reason"})

	// GeocodeLookupsTotal counts address resolutions by outcome.
	GeocodeLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "location",
		Name:      "geocode_lookups_total",
		Help:      "Total number of reverse geocoding lookups, labeled by result (resolved, fallback, cancelled).",
	}, []string{"result"})

	// BlobsSweptTotal counts orphaned staged files removed by the sweeper.
	BlobsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "attachments",
		Name:      "swept_total",
		Help:      "Total number of staged files deleted because no draft or report referenced them.",
	})
)

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsSubmittedTotal,
			SubmissionFailuresTotal,
			AttachmentsAcceptedTotal,
			AttachmentsRejectedTotal,
			GeocodeLookupsTotal,
			BlobsSweptTotal,
		)
	})
}
