// Package metrics provides Prometheus metrics for volume scans.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan results
const (
	ScanSucceeded = "success"
	ScanFailed    = "failure"
)

// Volume outcomes
const (
	VolumeAdded    = "added"
	VolumeSkipped  = "skipped"
	VolumeExcluded = "excluded"
	VolumeFailed   = "failed"
)

var (
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tierd_scans_total",
			Help: "Total number of volume scans",
		},
		[]string{"result"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tierd_scan_duration_seconds",
			Help:    "Volume scan duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	volumesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tierd_volumes_total",
			Help: "Total number of enumerated volumes by outcome",
		},
		[]string{"outcome"},
	)

	tierDisks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tierd_tier_disks",
			Help: "Number of disks assigned to each tier",
		},
		[]string{"level"},
	)

	tierCapacityBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tierd_tier_capacity_bytes",
			Help: "Summed disk capacity of each tier",
		},
		[]string{"level", "kind"},
	)
)

// RecordScan records a finished scan attempt.
func RecordScan(result string, duration time.Duration) {
	scansTotal.WithLabelValues(result).Inc()
	scanDuration.Observe(duration.Seconds())
}

// RecordVolumes adds count volumes with the given outcome.
func RecordVolumes(outcome string, count int) {
	if count > 0 {
		volumesTotal.WithLabelValues(outcome).Add(float64(count))
	}
}

// SetTier publishes the membership and capacity of a tier.
func SetTier(level int, disks int, total, used int64) {
	label := strconv.Itoa(level)
	tierDisks.WithLabelValues(label).Set(float64(disks))
	tierCapacityBytes.WithLabelValues(label, "total").Set(float64(total))
	tierCapacityBytes.WithLabelValues(label, "used").Set(float64(used))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
