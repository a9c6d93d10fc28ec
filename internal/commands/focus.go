package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/api"
	"github.com/balkashynov/studyfocus/internal/db"
	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/models"
	"github.com/balkashynov/studyfocus/internal/tui"
)

var focusCmd = &cobra.Command{
	Use:   "focus [task-id]",
	Short: "Run the focus timer on an In Progress task",
	Long: `Run a Pomodoro-style focus timer bound to one "In Progress" task. Without a
task id a picker lists your tasks. When the last session ends you are asked
whether to mark the task as Completed; if the task deadline passes first the
task is marked Expired.

Examples:
  studyfocus focus                         # pick a task
  studyfocus focus 65f1c2 --sessions 2     # two 25 minute sessions
  studyfocus focus 65f1c2 --work 50 --break 10 --no-ui`,
	Args: cobra.MaximumNArgs(1),
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		var opts focusFlags
		opts.sessions, _ = cmd.Flags().GetInt("sessions")
		opts.work, _ = cmd.Flags().GetInt("work")
		opts.brk, _ = cmd.Flags().GetInt("break")
		opts.noUI, _ = cmd.Flags().GetBool("no-ui")
		if len(args) == 1 {
			opts.taskID = args[0]
		}
		return runFocus(contextOf(cmd), a, opts)
	}),
}

type focusFlags struct {
	taskID   string
	sessions int
	work     int
	brk      int
	noUI     bool
}

// withDefaults fills unset durations from the config
func (f focusFlags) withDefaults(a *App) focusFlags {
	if f.sessions == 0 {
		f.sessions = a.Settings.Sessions
	}
	if f.work == 0 {
		f.work = a.Settings.WorkMinutes
	}
	if f.brk == 0 {
		f.brk = a.Settings.BreakMinutes
	}
	return f
}

// dispatcher runs status updates on goroutines and lets the command wait
// for them before the process exits
type dispatcher struct {
	wg sync.WaitGroup
}

func (d *dispatcher) dispatch(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

// Run outcomes reported once the backend calls are settled
const (
	outcomeCompleted = "completed"
	outcomeKept      = "kept"
	outcomeExpired   = "expired"
	outcomeAbandoned = "abandoned"
)

// failureCount counts status updates the backend did not accept
type failureCount struct {
	mu sync.Mutex
	n  int
}

func (f *failureCount) Notify(ev focus.Event) {
	if ev.Kind != focus.EventServiceCallFailed {
		return
	}
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
}

func (f *failureCount) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

func runFocus(ctx context.Context, a *App, flags focusFlags) error {
	flags = flags.withDefaults(a)

	tasks, err := loadTasks(ctx, a, false)
	if err != nil {
		return err
	}

	var task models.Task
	switch {
	case flags.taskID != "":
		if task, err = findTask(tasks, flags.taskID); err != nil {
			return err
		}
	case flags.noUI:
		return fmt.Errorf("a task id is required with --no-ui")
	default:
		picked, err := tui.RunPicker(tasks, tui.ThemeFor(a.Settings.Theme))
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		task = *picked
	}

	store, err := a.Store()
	if err != nil {
		return err
	}

	d := &dispatcher{}
	failures := &failureCount{}

	var sink *tui.EventSink
	notifiers := focus.MultiNotifier{
		db.NewFocusLog(store, a.Logger),
		focus.LogNotifier(a.Logger),
		failures,
	}
	if flags.noUI {
		notifiers = append(notifiers, printNotifier(a))
	} else {
		sink = tui.NewEventSink(64)
		notifiers = append(notifiers, sink)
	}

	// The cache only follows status changes the backend accepted
	service := db.NewStatusMirror(api.NewStatusUpdater(a.Client(), tasks...), store, a.Logger)
	engine := focus.New(service, notifiers, focus.Options{Dispatch: d.dispatch, CallTimeout: a.Settings.APITimeout})
	if err := engine.Start(&task, flags.sessions, flags.work, flags.brk); err != nil {
		return err
	}
	a.Logger.Info("focus run started", "run_id", engine.RunID(), "task_id", task.ID,
		"sessions", flags.sessions, "work_minutes", flags.work, "break_minutes", flags.brk)

	var outcome string
	if flags.noUI {
		outcome, err = runHeadless(ctx, a, engine)
	} else {
		outcome, err = runFocusTUI(a, engine, sink)
	}
	d.wg.Wait()
	if err != nil {
		return err
	}

	reportOutcome(a, task.Title, outcome, failures.count() > 0)
	return nil
}

// reportOutcome prints how the run ended once every status call returned
func reportOutcome(a *App, title, outcome string, failed bool) {
	switch outcome {
	case outcomeAbandoned:
		a.printf("⏹️  Focus run on %q abandoned.\n", title)
	case outcomeKept:
		a.printf("%q stays In Progress.\n", title)
	case outcomeCompleted:
		if failed {
			a.printf("⚠️  The backend did not accept the change, %q stays In Progress.\n", title)
			return
		}
		a.printf("✅ %q marked as Completed.\n", title)
	case outcomeExpired:
		if failed {
			a.printf("⚠️  The deadline of %q passed but the backend did not mark it Expired.\n", title)
			return
		}
		a.printf("⏰ The deadline of %q passed, it is now Expired.\n", title)
	}
}

func runFocusTUI(a *App, engine *focus.Engine, sink *tui.EventSink) (string, error) {
	result, err := tui.RunFocus(engine, sink, tui.FocusOptions{
		Theme:            tui.ThemeFor(a.Settings.Theme),
		DetailsCollapsed: a.Settings.DetailsCollapsed,
		OnToggleDetails:  a.Config.SetDetailsCollapsed,
	})
	if err != nil {
		return "", err
	}
	if result.Abandoned {
		return outcomeAbandoned, nil
	}
	return result.Outcome, nil
}

// runHeadless ticks the engine until the run ends and then asks for the
// completion on the command line
func runHeadless(ctx context.Context, a *App, engine *focus.Engine) (string, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := engine.State()
	a.printf("⏱️  Focusing on %q: %d × %d min, %d min breaks. Ctrl+C to stop.\n",
		state.Task.Title, state.TotalSessions, state.WorkSeconds/60, state.BreakSeconds/60)

	focus.Run(ctx, engine, a.TickInterval)

	if engine.State().IsRunning {
		engine.Reset()
		return outcomeAbandoned, nil
	}

	task, pending := engine.PendingCompletion()
	if !pending {
		// The deadline ended the run
		return outcomeExpired, nil
	}

	a.printf("Mark %q as Completed? [y/N] ", task.Title)
	answer, _ := bufio.NewReader(a.In).ReadString('\n')
	answer = strings.TrimSpace(answer)
	markCompleted := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	if err := engine.ConfirmCompletion(markCompleted); err != nil {
		return "", err
	}
	if markCompleted {
		return outcomeCompleted, nil
	}
	return outcomeKept, nil
}

// printNotifier writes engine events as plain lines
func printNotifier(a *App) focus.Notifier {
	return focus.NotifierFunc(func(ev focus.Event) {
		switch ev.Kind {
		case focus.EventServiceCallFailed:
			a.printf("⚠️  %s: %v\n", ev.Message, ev.Err)
		case focus.EventDeadlineExpired:
			a.printf("⏰ %s\n", ev.Message)
		case focus.EventAllSessionsCompleted:
			// The completion question follows on the prompt
			a.printf("• All sessions completed.\n")
		default:
			a.printf("• %s\n", ev.Message)
		}
	})
}

func init() {
	focusCmd.Flags().Int("sessions", 0, "number of work sessions (default from config, 4)")
	focusCmd.Flags().Int("work", 0, "work session length in minutes (default from config, 25)")
	focusCmd.Flags().Int("break", 0, "break length in minutes (default from config, 5)")
	focusCmd.Flags().Bool("no-ui", false, "run without the interactive timer")
}
