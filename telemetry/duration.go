package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatDuration renders a duration in the "days.hours:minutes:seconds"
// textual form the ingestion service expects. Negative input is clamped to
// zero. Seconds carry up to seven fractional digits with trailing zeros
// trimmed, and the day segment is omitted entirely when zero.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute

	seconds := strconv.FormatFloat(d.Seconds(), 'f', 7, 64)
	seconds = strings.TrimRight(seconds, "0")
	seconds = strings.TrimSuffix(seconds, ".")
	if intLen := strings.IndexByte(seconds, '.'); intLen == 1 || (intLen < 0 && len(seconds) == 1) {
		seconds = "0" + seconds
	}

	out := fmt.Sprintf("%02d:%02d:%s", hours, minutes, seconds)
	if days > 0 {
		out = strconv.FormatInt(int64(days), 10) + "." + out
	}
	return out
}
