package api

import (
	"context"
	"time"

	"github.com/balkashynov/studyfocus/internal/models"
)

// StatusUpdater binds the client to focus.TaskService. The backend expects
// the task's start date to be echoed back with every update, so the updater
// remembers the tasks it was given.
type StatusUpdater struct {
	client *Client
	starts map[string]time.Time
}

// NewStatusUpdater creates an updater that knows the start dates of tasks.
func NewStatusUpdater(client *Client, tasks ...models.Task) *StatusUpdater {
	starts := make(map[string]time.Time, len(tasks))
	for _, task := range tasks {
		starts[task.ID] = task.Start
	}
	return &StatusUpdater{client: client, starts: starts}
}

// SetTaskStatus implements focus.TaskService.
func (u *StatusUpdater) SetTaskStatus(ctx context.Context, taskID string, status models.TaskStatus, end time.Time) error {
	req := UpdateTaskRequest{Status: status, DueDate: &end}
	if start, ok := u.starts[taskID]; ok && !start.IsZero() {
		req.StartDate = &start
	}
	return u.client.UpdateTask(ctx, taskID, req)
}
