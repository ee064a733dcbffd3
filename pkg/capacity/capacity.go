// Package capacity derives used space and usage percentages from the raw
// available/total figures reported for a volume.
package capacity

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// UnknownPercentage is rendered when the total capacity is zero or negative.
const UnknownPercentage = "unknown"

// Usage is the result of Compute.
type Usage struct {
	Available int64
	Total     int64
	// Used may be negative when a volume reports more available than total
	// space; the raw value is kept for diagnostics.
	Used int64
	// Percent is only meaningful when PercentKnown is true.
	Percent      float64
	PercentKnown bool
}

// Compute defaults absent values to 0 and then subtracts. It never divides by
// zero.
func Compute(available, total *int64) Usage {
	usage := Usage{}
	if available != nil {
		usage.Available = *available
	}
	if total != nil {
		usage.Total = *total
	}

	usage.Used = Used(usage.Available, usage.Total)
	usage.Percent, usage.PercentKnown = Percentage(usage.Used, usage.Total)
	return usage
}

// Used returns total - available with int64 wrap-around on overflow.
func Used(available, total int64) int64 {
	return total - available
}

// Percentage returns used/total*100, or false when total <= 0.
func Percentage(used, total int64) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(used) / float64(total) * 100, true
}

// FormatPercentage renders the percentage with one decimal, e.g. "80.0%",
// or UnknownPercentage.
func FormatPercentage(used, total int64) string {
	percent, ok := Percentage(used, total)
	if !ok {
		return UnknownPercentage
	}
	return fmt.Sprintf("%.1f%%", percent)
}

// String renders the usage the way the CLI prints it.
func (u Usage) String() string {
	return fmt.Sprintf("%s used of %s (%s), %s available",
		FormatBytes(u.Used), FormatBytes(u.Total), FormatPercentage(u.Used, u.Total), FormatBytes(u.Available))
}

// FormatBytes renders a byte count with decimal SI units ("250 GB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		// -math.MinInt64 overflows, so convert before negating.
		return "-" + humanize.Bytes(uint64(-(bytes+1))+1)
	}
	return humanize.Bytes(uint64(bytes))
}
