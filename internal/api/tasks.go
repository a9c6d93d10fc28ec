package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/balkashynov/studyfocus/internal/models"
)

// taskDTO is a task as the backend serialises it.
type taskDTO struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	EstimatedTime int        `json:"estimatedTime"`
	Status        string     `json:"status"`
	StartDate     *time.Time `json:"startDate"`
	DueDate       *time.Time `json:"dueDate"`
	AllDay        bool       `json:"allDay"`
}

// toTask converts to local time, stretching all-day tasks to cover their
// whole calendar days.
func (d taskDTO) toTask() models.Task {
	task := models.Task{
		ID:            d.ID,
		Title:         d.Name,
		Description:   d.Description,
		Priority:      d.Priority,
		EstimatedTime: d.EstimatedTime,
		Status:        models.TaskStatus(d.Status),
		AllDay:        d.AllDay,
	}
	if d.StartDate != nil {
		task.Start = d.StartDate.Local()
	}
	if d.DueDate != nil {
		task.End = d.DueDate.Local()
	}

	if d.AllDay {
		if !task.Start.IsZero() {
			s := task.Start
			task.Start = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
		}
		if !task.End.IsZero() {
			e := task.End
			task.End = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), e.Location())
		}
	}
	return task
}

type taskListResponse struct {
	Data []taskDTO `json:"data"`
}

// ListTasks returns every task the user can pick for a focus run.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	var resp taskListResponse
	if err := c.do(ctx, http.MethodGet, "/task/getOptionTasks/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(resp.Data))
	for _, dto := range resp.Data {
		tasks = append(tasks, dto.toTask())
	}
	return tasks, nil
}

// UpdateTaskRequest is the body of a task status/date update. Nil dates are
// left unchanged by the backend.
type UpdateTaskRequest struct {
	Status    models.TaskStatus `json:"status"`
	StartDate *time.Time        `json:"startDate,omitempty"`
	DueDate   *time.Time        `json:"dueDate,omitempty"`
}

// UpdateTask changes a task's status and dates.
func (c *Client) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) error {
	req.StartDate = utcPtr(req.StartDate)
	req.DueDate = utcPtr(req.DueDate)
	return c.do(ctx, http.MethodPut, "/task/updateTasks/"+url.PathEscape(taskID), req, nil)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// RefreshExpired asks the backend to expire every overdue task of the user.
func (c *Client) RefreshExpired(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPut, "/task/update-expired-tasks/"+url.PathEscape(userID), struct{}{}, nil)
}

type suggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// SuggestFocusTime returns the AI focus-time suggestion as raw markdown.
func (c *Client) SuggestFocusTime(ctx context.Context, userID string) (string, error) {
	var resp suggestionResponse
	if err := c.do(ctx, http.MethodPost, "/task/suggest-focus-time/"+url.PathEscape(userID), struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Suggestion, nil
}

type chartResponse struct {
	Datasets []struct {
		Data []float64 `json:"data"`
	} `json:"datasets"`
}

// TaskStatusCounts returns how many of the user's tasks are in each status.
func (c *Client) TaskStatusCounts(ctx context.Context, userID string) (map[models.TaskStatus]int, error) {
	var resp chartResponse
	if err := c.do(ctx, http.MethodGet, "/task/task-status/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Datasets) == 0 {
		return nil, fmt.Errorf("task status chart has no datasets")
	}

	data := resp.Datasets[0].Data
	counts := make(map[models.TaskStatus]int, len(models.Statuses))
	for i, status := range models.Statuses {
		if i < len(data) {
			counts[status] = int(data[i])
		}
	}
	return counts, nil
}

// DailyTimeSpent returns the hours the backend counted for each day of the
// week starting at weekStart, Monday first.
func (c *Client) DailyTimeSpent(ctx context.Context, userID string, weekStart time.Time) ([]float64, error) {
	query := url.Values{"startDate": {weekStart.Format("2006-01-02")}}
	path := "/task/daily-time-spent/" + url.PathEscape(userID) + "?" + query.Encode()

	var resp chartResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Datasets) == 0 {
		return nil, fmt.Errorf("daily time chart has no datasets")
	}

	hours := make([]float64, 7)
	copy(hours, resp.Datasets[0].Data)
	return hours, nil
}
