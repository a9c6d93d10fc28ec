package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// RenderDailyHours writes the backend's hours per weekday for the week
// starting at weekStart, half an hour per bar cell
func RenderDailyHours(w io.Writer, weekStart time.Time, hours []float64) {
	fmt.Fprintf(w, "Time spent, week of %s\n", weekStart.Format("Jan 2, 2006"))

	var total float64
	for i, day := range Weekdays {
		var h float64
		if i < len(hours) {
			h = hours[i]
		}
		total += h
		date := weekStart.AddDate(0, 0, i).Format("Jan 2")
		fmt.Fprintf(w, "%s %-6s %5.1fh  %s\n", day.String()[:3], date, h, strings.Repeat("█", int(math.Round(h*2))))
	}
	fmt.Fprintf(w, "%-10s %5.1fh\n", "Total", total)
}
