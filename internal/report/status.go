package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/balkashynov/studyfocus/internal/models"
)

// RenderStatusCounts writes the backend's per-status task counts with a
// simple bar per status
func RenderStatusCounts(w io.Writer, counts map[models.TaskStatus]int) {
	total := 0
	for _, status := range models.Statuses {
		total += counts[status]
	}
	if total == 0 {
		fmt.Fprintln(w, "No tasks yet.")
		return
	}

	const barWidth = 30
	for _, status := range models.Statuses {
		n := counts[status]
		bar := n * barWidth / total
		fmt.Fprintf(w, "%-12s %4d  %s\n", status, n, strings.Repeat("█", bar))
	}
	fmt.Fprintf(w, "%-12s %4d\n", "Total", total)
}
