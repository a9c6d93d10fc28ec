package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/api"
	"github.com/balkashynov/studyfocus/internal/parser"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Change the status of a task",
	Long: `Change the status of a task on the backend. A task must be In Progress
before a focus run can use it.

Examples:
  studyfocus status 65f1c2 inprogress
  studyfocus status 65f1c2 "in progress"
  studyfocus status 65f1c2 done`,
	Args: cobra.ExactArgs(2),
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		return setStatus(contextOf(cmd), a, args[0], args[1])
	}),
}

// setStatus sends the new status with the task's current dates and mirrors
// it into the cache once the backend accepted it
func setStatus(ctx context.Context, a *App, taskID, rawStatus string) error {
	status, err := parser.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	tasks, err := loadTasks(ctx, a, false)
	if err != nil {
		return err
	}
	task, err := findTask(tasks, taskID)
	if err != nil {
		return err
	}
	if task.Status == status {
		a.printf("%q is already %s.\n", task.Title, status)
		return nil
	}

	req := api.UpdateTaskRequest{Status: status}
	if !task.Start.IsZero() {
		req.StartDate = &task.Start
	}
	if task.HasDeadline() {
		req.DueDate = &task.End
	}
	if err := a.Client().UpdateTask(ctx, task.ID, req); err != nil {
		return describeAPIError(err)
	}
	a.Logger.Info("task status changed", "task_id", task.ID, "from", task.Status, "to", status)

	store, err := a.Store()
	if err != nil {
		return err
	}
	if err := store.UpdateCachedStatus(task.ID, status); err != nil {
		a.Logger.Warn("failed to update cached task", "task_id", task.ID, "error", err)
	}

	a.printf("✅ %q is now %s.\n", task.Title, status)
	return nil
}
