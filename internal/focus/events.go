package focus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/studyfocus/internal/models"
)

// EventKind identifies what an Event reports.
type EventKind string

const (
	EventSessionCompleted     EventKind = "session_completed"
	EventBreakStarted         EventKind = "break_started"
	EventWorkStarted          EventKind = "work_started"
	EventAllSessionsCompleted EventKind = "all_sessions_completed"
	EventDeadlineExpired      EventKind = "deadline_expired"
	EventServiceCallFailed    EventKind = "service_call_failed"
)

// Event is a phase transition, terminal outcome or side-effect failure
// reported by the Engine.
type Event struct {
	Kind          EventKind
	RunID         string
	Task          models.Task
	Session       int // session the event refers to
	TotalSessions int
	Duration      time.Duration // length of the finished interval, if any
	Message       string
	Err           error
	At            time.Time
}

// Notifier receives engine events. Implementations must not call back into
// the Engine synchronously.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(ev).
func (f NotifierFunc) Notify(ev Event) {
	f(ev)
}

// MultiNotifier fans every event out to each notifier in order.
type MultiNotifier []Notifier

// Notify delivers ev to all non-nil notifiers.
func (m MultiNotifier) Notify(ev Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ev)
		}
	}
}

// LogNotifier writes events to a structured logger.
func LogNotifier(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return NotifierFunc(func(ev Event) {
		attrs := []any{
			"kind", string(ev.Kind),
			"run_id", ev.RunID,
			"task_id", ev.Task.ID,
			"session", ev.Session,
		}
		if ev.Err != nil {
			logger.Warn(ev.Message, append(attrs, "error", ev.Err)...)
			return
		}
		logger.Info(ev.Message, attrs...)
	})
}

func sessionCompletedMessage(session int) string {
	return fmt.Sprintf("Session %d completed! Starting break.", session)
}

func workStartedMessage(session int) string {
	return fmt.Sprintf("Break time is over! Starting session %d.", session)
}

func allCompletedMessage(title string) string {
	return fmt.Sprintf("All sessions completed. Mark %q as Completed?", title)
}
