package focus

import "errors"

var (
	// ErrInvalidTaskState is returned by Start when no task is selected or
	// the task is not "In Progress".
	ErrInvalidTaskState = errors.New("invalid task state")

	// ErrAlreadyRunning is returned by Start while a plan is active.
	ErrAlreadyRunning = errors.New("focus timer already running")

	// ErrInvalidPlan is returned by Start for non-positive counts or durations.
	ErrInvalidPlan = errors.New("invalid focus plan")

	// ErrNothingPending is returned by ConfirmCompletion when no finished
	// run awaits confirmation.
	ErrNothingPending = errors.New("no completed run awaiting confirmation")
)
