package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus time for the week",
	Long: `Show a weekly timesheet of focus time grouped by task and day, built from
the local focus log. Use --remote for the backend's task counts per status
and the hours it counted per day.

Example output:
  Task                     Mon     Tue     Wed  ...  Total
  Read chapter 3           50m       -     25m  ...   1h15`,
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")
		weeksAgo, _ := cmd.Flags().GetInt("weeks-ago")

		if remote {
			return remoteStats(contextOf(cmd), a, weeksAgo)
		}
		return weeklyStats(a, weeksAgo)
	}),
}

func weeklyStats(a *App, weeksAgo int) error {
	if weeksAgo < 0 {
		return fmt.Errorf("--weeks-ago must not be negative")
	}
	store, err := a.Store()
	if err != nil {
		return err
	}

	weekStart := report.WeekStart(a.Now()).AddDate(0, 0, -7*weeksAgo)
	records, err := store.FocusRecordsInRange(weekStart, report.WeekEnd(weekStart))
	if err != nil {
		return fmt.Errorf("failed to read focus log: %w", err)
	}

	report.Render(a.Out, report.Weekly(records, weekStart))
	return nil
}

func remoteStats(ctx context.Context, a *App, weeksAgo int) error {
	if weeksAgo < 0 {
		return fmt.Errorf("--weeks-ago must not be negative")
	}
	id, err := a.Identity()
	if err != nil {
		return err
	}
	client := a.Client()

	counts, err := client.TaskStatusCounts(ctx, id.UserID)
	if err != nil {
		return describeAPIError(err)
	}
	report.RenderStatusCounts(a.Out, counts)

	weekStart := report.WeekStart(a.Now()).AddDate(0, 0, -7*weeksAgo)
	hours, err := client.DailyTimeSpent(ctx, id.UserID, weekStart)
	if err != nil {
		return describeAPIError(err)
	}
	a.println()
	report.RenderDailyHours(a.Out, weekStart, hours)
	return nil
}

func init() {
	statsCmd.Flags().Bool("remote", false, "Show task counts per status from the backend")
	statsCmd.Flags().Int("weeks-ago", 0, "Show an earlier week (1 = last week)")
}
