// Package focus implements the work/break session engine behind the focus
// timer. The engine is tick driven: a host calls Tick once per second and
// commands (Start, Pause, Resume, Reset) arrive between ticks.
package focus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/balkashynov/studyfocus/internal/models"
)

// statusEndOffset backdates the end timestamp sent with terminal status
// updates so a closed task never ends in the future.
const statusEndOffset = time.Second

const defaultCallTimeout = 15 * time.Second

// Phase is the current mode of the engine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWorking
	PhaseOnBreak
)

func (p Phase) String() string {
	switch p {
	case PhaseWorking:
		return "working"
	case PhaseOnBreak:
		return "on break"
	default:
		return "idle"
	}
}

// TaskService persists task status changes made by the engine.
type TaskService interface {
	SetTaskStatus(ctx context.Context, taskID string, status models.TaskStatus, end time.Time) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Dispatcher runs a side effect. The default runs it on a new goroutine so
// Tick never waits on the network.
type Dispatcher func(func())

func goDispatch(fn func()) { go fn() }

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Clock       Clock
	Dispatch    Dispatcher
	CallTimeout time.Duration
}

// Plan is the configuration fixed by Start for the duration of a run.
type Plan struct {
	Task          *models.Task `validate:"required"`
	TotalSessions int          `validate:"gt=0"`
	WorkSeconds   int          `validate:"gt=0"`
	BreakSeconds  int          `validate:"gt=0"`
}

// State is a snapshot of the engine. The zero State is the Idle default.
type State struct {
	Plan

	CurrentSession   int
	Phase            Phase
	SecondsRemaining int
	IsRunning        bool
	IsPaused         bool
}

// PhaseSeconds returns the full length of the current phase.
func (s State) PhaseSeconds() int {
	switch s.Phase {
	case PhaseWorking:
		return s.WorkSeconds
	case PhaseOnBreak:
		return s.BreakSeconds
	default:
		return 0
	}
}

// Progress returns how much of the current phase has elapsed, in [0, 1].
func (s State) Progress() float64 {
	total := s.PhaseSeconds()
	if total <= 0 {
		return 0
	}
	return float64(total-s.SecondsRemaining) / float64(total)
}

type statusCall struct {
	runID  string
	task   models.Task
	status models.TaskStatus
	end    time.Time
}

// Engine drives a single focus run to completion or cancellation.
type Engine struct {
	mu       sync.Mutex
	service  TaskService
	notifier Notifier
	clock    Clock
	dispatch Dispatcher
	timeout  time.Duration
	validate *validator.Validate

	state   State
	runID   string
	pending *models.Task // finished task awaiting ConfirmCompletion
}

// New creates an idle engine.
func New(service TaskService, notifier Notifier, options Options) *Engine {
	if options.Clock == nil {
		options.Clock = systemClock{}
	}
	if options.Dispatch == nil {
		options.Dispatch = goDispatch
	}
	if options.CallTimeout <= 0 {
		options.CallTimeout = defaultCallTimeout
	}
	if notifier == nil {
		notifier = MultiNotifier(nil)
	}

	return &Engine{
		service:  service,
		notifier: notifier,
		clock:    options.Clock,
		dispatch: options.Dispatch,
		timeout:  options.CallTimeout,
		validate: validator.New(),
	}
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.state
	if state.Task != nil {
		task := *state.Task
		state.Task = &task
	}
	return state
}

// RunID identifies the active run; empty while idle.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// PendingCompletion returns the finished task awaiting confirmation, if any.
func (e *Engine) PendingCompletion() (models.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return models.Task{}, false
	}
	return *e.pending, true
}

// Start begins a run of totalSessions work intervals bound to task.
// Durations are given in minutes.
func (e *Engine) Start(task *models.Task, totalSessions, workMinutes, breakMinutes int) error {
	if task == nil {
		return fmt.Errorf("%w: select a task first", ErrInvalidTaskState)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.IsRunning {
		return ErrAlreadyRunning
	}
	if !task.IsInProgress() {
		return fmt.Errorf("%w: change the status of %q to %s first", ErrInvalidTaskState, task.Title, models.StatusInProgress)
	}

	bound := *task
	plan := Plan{
		Task:          &bound,
		TotalSessions: totalSessions,
		WorkSeconds:   workMinutes * 60,
		BreakSeconds:  breakMinutes * 60,
	}
	if err := e.validate.Struct(plan); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	e.pending = nil
	e.runID = uuid.NewString()
	e.state = State{
		Plan:             plan,
		CurrentSession:   1,
		Phase:            PhaseWorking,
		SecondsRemaining: plan.WorkSeconds,
		IsRunning:        true,
	}
	return nil
}

// Pause suspends ticking. No-op unless running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning {
		e.state.IsPaused = true
	}
}

// Resume continues a paused run. No-op unless paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning && e.state.IsPaused {
		e.state.IsPaused = false
	}
}

// Reset abandons the run and returns to the Idle default state without
// touching the task.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
	e.pending = nil
}

// Tick advances the run by one second. It is a no-op while idle or paused.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.state.IsRunning || e.state.IsPaused {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	var (
		events []Event
		calls  []statusCall
	)

	// The deadline pre-empts every other transition.
	if task := e.state.Task; task.HasDeadline() && !now.Before(task.End) {
		events, calls = e.expireLocked(now)
	} else {
		if e.state.SecondsRemaining > 0 {
			e.state.SecondsRemaining--
		}
		if e.state.SecondsRemaining == 0 {
			events, calls = e.advanceLocked(now)
		}
	}
	e.mu.Unlock()

	e.emit(events...)
	e.dispatchCalls(calls)
}

// ConfirmCompletion resolves the prompt raised by AllSessionsCompleted.
// When markCompleted is true the task is set to Completed.
func (e *Engine) ConfirmCompletion(markCompleted bool) error {
	e.mu.Lock()
	task := e.pending
	e.pending = nil
	runID := e.runID
	if task != nil {
		e.runID = ""
	}
	now := e.clock.Now()
	e.mu.Unlock()

	if task == nil {
		return ErrNothingPending
	}
	if markCompleted {
		e.dispatchCalls([]statusCall{{
			runID:  runID,
			task:   *task,
			status: models.StatusCompleted,
			end:    now.Add(-statusEndOffset),
		}})
	}
	return nil
}

func (e *Engine) expireLocked(now time.Time) ([]Event, []statusCall) {
	task := *e.state.Task
	ev := Event{
		Kind:          EventDeadlineExpired,
		RunID:         e.runID,
		Task:          task,
		Session:       e.state.CurrentSession,
		TotalSessions: e.state.TotalSessions,
		Message:       "Time out! The task deadline has arrived.",
		At:            now,
	}
	if e.state.Phase == PhaseWorking {
		ev.Duration = time.Duration(e.state.WorkSeconds-e.state.SecondsRemaining) * time.Second
	}
	call := statusCall{
		runID:  e.runID,
		task:   task,
		status: models.StatusExpired,
		end:    now.Add(-statusEndOffset),
	}

	e.clearLocked()
	e.pending = nil
	return []Event{ev}, []statusCall{call}
}

// advanceLocked applies the phase transition due when the countdown hits zero.
func (e *Engine) advanceLocked(now time.Time) ([]Event, []statusCall) {
	s := &e.state
	base := Event{
		RunID:         e.runID,
		Task:          *s.Task,
		Session:       s.CurrentSession,
		TotalSessions: s.TotalSessions,
		At:            now,
	}

	switch {
	case s.Phase == PhaseWorking && s.CurrentSession < s.TotalSessions:
		completed := base
		completed.Kind = EventSessionCompleted
		completed.Duration = time.Duration(s.WorkSeconds) * time.Second
		completed.Message = sessionCompletedMessage(s.CurrentSession)

		s.Phase = PhaseOnBreak
		s.SecondsRemaining = s.BreakSeconds

		brk := base
		brk.Kind = EventBreakStarted
		brk.Message = fmt.Sprintf("Break started (%d min).", s.BreakSeconds/60)
		return []Event{completed, brk}, nil

	case s.Phase == PhaseOnBreak && s.CurrentSession < s.TotalSessions:
		s.CurrentSession++
		s.Phase = PhaseWorking
		s.SecondsRemaining = s.WorkSeconds

		work := base
		work.Kind = EventWorkStarted
		work.Session = s.CurrentSession
		work.Message = workStartedMessage(s.CurrentSession)
		return []Event{work}, nil

	default:
		completed := base
		completed.Kind = EventSessionCompleted
		completed.Duration = time.Duration(s.WorkSeconds) * time.Second
		completed.Message = fmt.Sprintf("Session %d completed!", s.CurrentSession)

		all := base
		all.Kind = EventAllSessionsCompleted
		all.Message = allCompletedMessage(s.Task.Title)

		task := *s.Task
		runID := e.runID
		e.clearLocked()
		e.pending = &task
		e.runID = runID
		return []Event{completed, all}, nil
	}
}

func (e *Engine) clearLocked() {
	e.state = State{}
	e.runID = ""
}

func (e *Engine) emit(events ...Event) {
	for _, ev := range events {
		e.notifier.Notify(ev)
	}
}

// dispatchCalls hands status updates to the dispatcher. Failures surface as
// ServiceCallFailed events and never alter engine state.
func (e *Engine) dispatchCalls(calls []statusCall) {
	if e.service == nil {
		return
	}
	for _, call := range calls {
		call := call
		e.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
			defer cancel()

			if err := e.service.SetTaskStatus(ctx, call.task.ID, call.status, call.end); err != nil {
				e.emit(Event{
					Kind:    EventServiceCallFailed,
					RunID:   call.runID,
					Task:    call.task,
					Message: fmt.Sprintf("Could not mark %q as %s", call.task.Title, call.status),
					Err:     err,
					At:      e.clock.Now(),
				})
			}
		})
	}
}
