package models

import (
	"time"
)

// Focus record outcomes
const (
	OutcomeCompleted = "completed" // a work interval ran to zero
	OutcomeExpired   = "expired"   // the task deadline cut the run short
)

// FocusRecord is one finished work interval in the local focus log
type FocusRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RunID           string    `gorm:"index" json:"run_id"`
	TaskID          string    `gorm:"index;not null" json:"task_id"`
	TaskTitle       string    `json:"task_title"`
	Session         int       `json:"session"` // 1-based index within the run
	StartedAt       time.Time `gorm:"not null" json:"started_at"`
	FinishedAt      time.Time `gorm:"index" json:"finished_at"`
	DurationSeconds int       `json:"duration_seconds"`
	Outcome         string    `gorm:"default:completed" json:"outcome"`
}

// Duration returns the recorded focus time
func (r FocusRecord) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}
