package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepFilesDeleted counts expired files fully reclaimed (blob and row).
	SweepFilesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharevault_sweep_files_deleted_total",
		Help: "Expired files whose blob and metadata were deleted.",
	})

	// SweepLinksDeactivated counts links the sweeper tombstoned.
	SweepLinksDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharevault_sweep_links_deactivated_total",
		Help: "Share links deactivated due to time expiry.",
	})

	// SweepFailedDeletes counts blob deletes that exhausted their retries.
	SweepFailedDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharevault_sweep_failed_deletes_total",
		Help: "Blob deletions that failed after all retries.",
	})

	// SweepDuration records how long the last sweep iteration took.
	SweepDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sharevault_sweep_duration_seconds",
		Help: "Duration of the most recent sweep iteration.",
	})

	// DownloadsServed counts gated downloads that consumed a view.
	DownloadsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharevault_downloads_served_total",
		Help: "Downloads that passed the share gate.",
	})
)
