package db

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/models"
)

// CacheTasks replaces the cached task list of a user
func (s *Store) CacheTasks(userID string, tasks []models.Task) error {
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CachedTask{}).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		rows := make([]models.CachedTask, 0, len(tasks))
		for _, task := range tasks {
			rows = append(rows, models.NewCachedTask(userID, task, now))
		}
		return tx.Create(&rows).Error
	})
}

// CachedTasks returns the last cached task list of a user
func (s *Store) CachedTasks(userID string) ([]models.Task, error) {
	var rows []models.CachedTask
	if err := s.db.Where("user_id = ?", userID).Order("\"end\" ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.Task())
	}
	return tasks, nil
}

// UpdateCachedStatus mirrors a status change into the cache
func (s *Store) UpdateCachedStatus(taskID string, status models.TaskStatus) error {
	return s.db.Model(&models.CachedTask{}).Where("id = ?", taskID).Update("status", string(status)).Error
}

// StatusMirror copies status changes the backend accepted into the cache.
// A rejected change leaves the cached task as it was.
type StatusMirror struct {
	next   focus.TaskService
	store  *Store
	logger *slog.Logger
}

// NewStatusMirror wraps next so successful updates reach the task cache
func NewStatusMirror(next focus.TaskService, store *Store, logger *slog.Logger) *StatusMirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusMirror{next: next, store: store, logger: logger}
}

// SetTaskStatus implements focus.TaskService
func (m *StatusMirror) SetTaskStatus(ctx context.Context, taskID string, status models.TaskStatus, end time.Time) error {
	if err := m.next.SetTaskStatus(ctx, taskID, status, end); err != nil {
		return err
	}
	if err := m.store.UpdateCachedStatus(taskID, status); err != nil {
		m.logger.Warn("failed to update cached task", "task_id", taskID, "error", err)
	}
	return nil
}
