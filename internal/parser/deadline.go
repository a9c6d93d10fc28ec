package parser

import (
	"fmt"
	"time"
)

// FormatDeadline renders a task deadline relative to now
func FormatDeadline(end, now time.Time) string {
	if end.IsZero() {
		return "no deadline"
	}

	// Calendar days difference, not 24h periods
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	local := end.In(now.Location())
	dueDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	stamp := local.Format("02/01/2006 15:04")

	switch {
	case !end.After(now):
		return fmt.Sprintf("⚠️ OVERDUE (%s)", stamp)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today in %s (%s)", FormatRemaining(end.Sub(now)), stamp)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", stamp)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", stamp, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", stamp)
	}
}

// FormatRemaining renders a positive duration as "1h05m" or "12m"
func FormatRemaining(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	d = d.Truncate(time.Minute)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatClock renders seconds as MM:SS, or HH:MM:SS past an hour
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
