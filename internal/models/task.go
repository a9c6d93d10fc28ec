package models

import (
	"time"
)

// TaskStatus is the lifecycle status the backend assigns to a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusExpired    TaskStatus = "Expired"
)

// Statuses lists every status in board order
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted, StatusExpired}

// Task is the client-side copy of a backend task
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`       // Low, Medium, High
	EstimatedTime int        `json:"estimated_time"` // minutes
	Status        TaskStatus `json:"status"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"` // deadline, zero means none
	AllDay        bool       `json:"all_day"`
}

// IsInProgress reports whether a focus timer may be bound to the task
func (t Task) IsInProgress() bool {
	return t.Status == StatusInProgress
}

// HasDeadline reports whether the task carries an end timestamp
func (t Task) HasDeadline() bool {
	return !t.End.IsZero()
}

// CachedTask is the last fetched copy of a task, kept for offline listing
type CachedTask struct {
	ID        string    `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	FetchedAt time.Time `json:"fetched_at"`

	Title         string     `gorm:"not null" json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	EstimatedTime int        `json:"estimated_time"`
	Status        string     `json:"status"`
	Start         *time.Time `json:"start"`
	End           *time.Time `json:"end"`
	AllDay        bool       `json:"all_day"`
}

// NewCachedTask converts a fetched task into its cached row
func NewCachedTask(userID string, task Task, fetchedAt time.Time) CachedTask {
	cached := CachedTask{
		ID:            task.ID,
		UserID:        userID,
		FetchedAt:     fetchedAt,
		Title:         task.Title,
		Description:   task.Description,
		Priority:      task.Priority,
		EstimatedTime: task.EstimatedTime,
		Status:        string(task.Status),
		AllDay:        task.AllDay,
	}
	if !task.Start.IsZero() {
		start := task.Start
		cached.Start = &start
	}
	if !task.End.IsZero() {
		end := task.End
		cached.End = &end
	}
	return cached
}

// Task converts the cached row back into a task
func (c CachedTask) Task() Task {
	task := Task{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Priority:      c.Priority,
		EstimatedTime: c.EstimatedTime,
		Status:        TaskStatus(c.Status),
		AllDay:        c.AllDay,
	}
	if c.Start != nil {
		task.Start = *c.Start
	}
	if c.End != nil {
		task.End = *c.End
	}
	return task
}
