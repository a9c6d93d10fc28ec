// Package report aggregates the local focus log into weekly timesheets.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/balkashynov/studyfocus/internal/models"
	"github.com/balkashynov/studyfocus/internal/parser"
)

// Weekdays in calendar week order
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Row is the focus time spent on one task during the week
type Row struct {
	TaskID  string
	Title   string
	Seconds map[time.Weekday]int
	Total   int
}

// Timesheet is a week of focus time grouped by task and day
type Timesheet struct {
	WeekStart time.Time
	Rows      []Row
	DayTotals map[time.Weekday]int
	Total     int
	Sessions  int // completed work intervals
	Expired   int // runs cut short by a deadline
}

// WeekStart returns the start of the calendar week (Monday) for t
func WeekStart(t time.Time) time.Time {
	weekday := t.Weekday()
	daysFromMonday := int(weekday - time.Monday)
	if weekday == time.Sunday {
		daysFromMonday = 6
	}

	start := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}

// WeekEnd returns the last instant of the week starting at weekStart
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// Weekly groups records by task and weekday. Records outside the week are ignored.
func Weekly(records []models.FocusRecord, weekStart time.Time) Timesheet {
	sheet := Timesheet{
		WeekStart: weekStart,
		DayTotals: make(map[time.Weekday]int),
	}
	weekEnd := WeekEnd(weekStart)
	rows := make(map[string]*Row)

	for _, record := range records {
		finished := record.FinishedAt.In(weekStart.Location())
		if finished.Before(weekStart) || finished.After(weekEnd) {
			continue
		}

		switch record.Outcome {
		case models.OutcomeExpired:
			sheet.Expired++
		default:
			sheet.Sessions++
		}
		if record.DurationSeconds <= 0 {
			continue
		}

		row, ok := rows[record.TaskID]
		if !ok {
			row = &Row{TaskID: record.TaskID, Title: record.TaskTitle, Seconds: make(map[time.Weekday]int)}
			rows[record.TaskID] = row
		}

		day := finished.Weekday()
		row.Seconds[day] += record.DurationSeconds
		row.Total += record.DurationSeconds
		sheet.DayTotals[day] += record.DurationSeconds
		sheet.Total += record.DurationSeconds
	}

	for _, row := range rows {
		sheet.Rows = append(sheet.Rows, *row)
	}
	// Most focused task first
	sort.Slice(sheet.Rows, func(i, j int) bool {
		if sheet.Rows[i].Total != sheet.Rows[j].Total {
			return sheet.Rows[i].Total > sheet.Rows[j].Total
		}
		return sheet.Rows[i].Title < sheet.Rows[j].Title
	})

	return sheet
}

// Render writes the timesheet as a fixed-width table
func Render(w io.Writer, sheet Timesheet) {
	if len(sheet.Rows) == 0 {
		fmt.Fprintln(w, "No focus time recorded this week.")
		return
	}

	taskWidth := 20
	for _, row := range sheet.Rows {
		if width := ansi.StringWidth(row.Title); width > taskWidth {
			taskWidth = width
		}
	}
	if taskWidth > 40 {
		taskWidth = 40
	}
	const cell = 6

	separator := strings.Repeat("-", taskWidth) + strings.Repeat("  "+strings.Repeat("-", cell), len(Weekdays)+1)

	fmt.Fprintf(w, "%-*s", taskWidth, "Task")
	for _, day := range Weekdays {
		fmt.Fprintf(w, "  %*s", cell, day.String()[:3])
	}
	fmt.Fprintf(w, "  %*s\n", cell, "Total")
	fmt.Fprintln(w, separator)

	for _, row := range sheet.Rows {
		fmt.Fprint(w, parser.PadTitle(row.Title, taskWidth))
		for _, day := range Weekdays {
			fmt.Fprintf(w, "  %*s", cell, formatCell(row.Seconds[day]))
		}
		fmt.Fprintf(w, "  %*s\n", cell, formatCell(row.Total))
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%-*s", taskWidth, "Total")
	for _, day := range Weekdays {
		fmt.Fprintf(w, "  %*s", cell, formatCell(sheet.DayTotals[day]))
	}
	fmt.Fprintf(w, "  %*s\n", cell, formatCell(sheet.Total))

	fmt.Fprintf(w, "\n%d sessions completed, %d runs expired\n", sheet.Sessions, sheet.Expired)
	fmt.Fprintf(w, "Week of %s to %s\n",
		sheet.WeekStart.Format("Jan 2"),
		sheet.WeekStart.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}

// formatCell renders seconds as "1h05", "25m" or "-"
func formatCell(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := (seconds + 59) / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02d", minutes/60, minutes%60)
}
