package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordScan(t *testing.T) {
	before := testutil.ToFloat64(scansTotal.WithLabelValues(ScanSucceeded))

	RecordScan(ScanSucceeded, 250*time.Millisecond)

	if got := testutil.ToFloat64(scansTotal.WithLabelValues(ScanSucceeded)); got != before+1 {
		t.Errorf("scans_total = %f, expected %f", got, before+1)
	}
}

func TestRecordVolumesIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(volumesTotal.WithLabelValues(VolumeExcluded))

	RecordVolumes(VolumeExcluded, 0)
	RecordVolumes(VolumeExcluded, 3)

	if got := testutil.ToFloat64(volumesTotal.WithLabelValues(VolumeExcluded)); got != before+3 {
		t.Errorf("volumes_total = %f, expected %f", got, before+3)
	}
}

func TestSetTier(t *testing.T) {
	SetTier(2, 4, 1000, 250)

	if got := testutil.ToFloat64(tierDisks.WithLabelValues("2")); got != 4 {
		t.Errorf("tier_disks = %f, expected 4", got)
	}
	if got := testutil.ToFloat64(tierCapacityBytes.WithLabelValues("2", "used")); got != 250 {
		t.Errorf("tier_capacity_bytes = %f, expected 250", got)
	}
}
