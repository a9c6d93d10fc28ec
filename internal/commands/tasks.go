package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/api"
	"github.com/balkashynov/studyfocus/internal/models"
	"github.com/balkashynov/studyfocus/internal/parser"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"ls", "list"},
	Short:   "List your tasks",
	Long: `List your tasks from the study planner. The list is cached locally so it
can be shown with --offline or when the backend is unreachable.

Examples:
  studyfocus tasks
  studyfocus tasks --status "in progress"
  studyfocus tasks --offline`,
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		statusFlag, _ := cmd.Flags().GetString("status")
		offline, _ := cmd.Flags().GetBool("offline")

		var filter models.TaskStatus
		if statusFlag != "" {
			status, err := parser.ParseStatus(statusFlag)
			if err != nil {
				return err
			}
			filter = status
		}

		tasks, err := loadTasks(contextOf(cmd), a, offline)
		if err != nil {
			return err
		}
		printTasks(a, filterTasks(tasks, filter))
		return nil
	}),
}

// loadTasks fetches the task list and refreshes the cache, falling back to
// the cache when offline or when the backend cannot be reached
func loadTasks(ctx context.Context, a *App, offline bool) ([]models.Task, error) {
	id, err := a.Identity()
	if err != nil {
		return nil, err
	}
	store, err := a.Store()
	if err != nil {
		return nil, err
	}

	if !offline {
		tasks, err := a.Client().ListTasks(ctx, id.UserID)
		if err == nil {
			if cacheErr := store.CacheTasks(id.UserID, tasks); cacheErr != nil {
				a.Logger.Warn("failed to cache tasks", "error", cacheErr)
			}
			return tasks, nil
		}

		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, describeAPIError(err)
		}
		a.Logger.Warn("backend unreachable, using cached tasks", "error", err)
		a.printf("⚠️  Backend unreachable, showing cached tasks.\n")
	}

	return store.CachedTasks(id.UserID)
}

func filterTasks(tasks []models.Task, status models.TaskStatus) []models.Task {
	if status == "" {
		return tasks
	}
	var out []models.Task
	for _, task := range tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

func printTasks(a *App, tasks []models.Task) {
	if len(tasks) == 0 {
		a.println("No tasks found.")
		return
	}

	a.printf("%-26s %-12s %-36s %-8s %s\n", "ID", "STATUS", "TITLE", "PRIORITY", "DUE")
	a.println(strings.Repeat("-", 100))

	now := a.Now()
	for _, task := range tasks {
		priority := task.Priority
		if priority == "" {
			priority = "-"
		}
		a.printf("%-26s %-12s %s %-8s %s\n", task.ID, task.Status, parser.PadTitle(task.Title, 36), priority, parser.FormatDeadline(task.End, now))
	}
}

// findTask returns the task with id
func findTask(tasks []models.Task, id string) (models.Task, error) {
	for _, task := range tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.Task{}, fmt.Errorf("task %s not found", id)
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark overdue tasks as Expired on the backend",
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		id, err := a.Identity()
		if err != nil {
			return err
		}
		if err := a.Client().RefreshExpired(contextOf(cmd), id.UserID); err != nil {
			return describeAPIError(err)
		}
		a.println("✅ Overdue tasks refreshed.")
		return nil
	}),
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	tasksCmd.Flags().StringP("status", "s", "", "Filter by status: todo, inprogress, completed, expired")
	tasksCmd.Flags().Bool("offline", false, "Show the cached task list without calling the backend")
}
