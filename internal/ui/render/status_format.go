package render

import (
	"fmt"
	"strings"
	"time"
)

func formatMessageCount(n int) string {
	if n == 1 {
		return "1 message"
	}
	return formatCompactNumber(n) + " messages"
}

func formatCompactNumber(n int) string {
	switch {
	case n >= 1_000_000_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000_000_000.0)) + "B"
	case n >= 1_000_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000_000.0)) + "M"
	case n >= 10_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000.0)) + "k"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimTrailingZero(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimSuffix(s, "0"), ".")
}

func formatDurationShort(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return trimTrailingZero(fmt.Sprintf("%.1f", d.Seconds())) + "s"
	case d < time.Hour:
		return trimTrailingZero(fmt.Sprintf("%.1f", d.Minutes())) + "m"
	default:
		return trimTrailingZero(fmt.Sprintf("%.1f", d.Hours())) + "h"
	}
}
