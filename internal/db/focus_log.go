package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/models"
)

// RecordFocus stores one finished work interval
func (s *Store) RecordFocus(record *models.FocusRecord) error {
	if record.TaskID == "" {
		return fmt.Errorf("focus record needs a task id")
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = record.FinishedAt.Add(-record.Duration())
	}
	// Timestamps are stored as text, keep them in one zone so ranges compare
	record.StartedAt = record.StartedAt.UTC()
	record.FinishedAt = record.FinishedAt.UTC()
	return s.db.Create(record).Error
}

// FocusRecordsInRange returns all records finished within [start, end]
func (s *Store) FocusRecordsInRange(start, end time.Time) ([]models.FocusRecord, error) {
	var records []models.FocusRecord

	err := s.db.Where("finished_at >= ? AND finished_at <= ?", start.UTC(), end.UTC()).
		Order("finished_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// FocusRecordsForRun returns the records written by a single focus run
func (s *Store) FocusRecordsForRun(runID string) ([]models.FocusRecord, error) {
	var records []models.FocusRecord
	if err := s.db.Where("run_id = ?", runID).Order("session ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FocusLog writes engine events to the local focus log
type FocusLog struct {
	store  *Store
	logger *slog.Logger
}

// NewFocusLog creates a focus.Notifier backed by store
func NewFocusLog(store *Store, logger *slog.Logger) *FocusLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &FocusLog{store: store, logger: logger}
}

// Notify records completed work intervals and partial intervals cut short
// by a deadline
func (l *FocusLog) Notify(ev focus.Event) {
	var outcome string
	switch ev.Kind {
	case focus.EventSessionCompleted:
		outcome = models.OutcomeCompleted
	case focus.EventDeadlineExpired:
		outcome = models.OutcomeExpired
	default:
		return
	}

	record := &models.FocusRecord{
		RunID:           ev.RunID,
		TaskID:          ev.Task.ID,
		TaskTitle:       ev.Task.Title,
		Session:         ev.Session,
		StartedAt:       ev.At.Add(-ev.Duration),
		FinishedAt:      ev.At,
		DurationSeconds: int(ev.Duration / time.Second),
		Outcome:         outcome,
	}
	if err := l.store.RecordFocus(record); err != nil {
		l.logger.Warn("failed to write focus record", "task_id", ev.Task.ID, "error", err)
	}
}
