package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/studyfocus/internal/auth"
	"github.com/balkashynov/studyfocus/internal/config"
	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/logger"
	"github.com/balkashynov/studyfocus/internal/models"
	"github.com/balkashynov/studyfocus/internal/report"
)

const backendToken = "tok"

type backend struct {
	mu          sync.Mutex
	statuses    map[string][]string
	expired     int
	failUpdates bool
	weekStarts  []string
}

func (b *backend) rejectUpdates() {
	b.mu.Lock()
	b.failUpdates = true
	b.mu.Unlock()
}

func (b *backend) statusesFor(id string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.statuses[id]...)
}

func (b *backend) expiredCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expired
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &backend{statuses: map[string][]string{}}
	r := gin.New()

	r.POST("/user/login", func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Password != "secret" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": "u1", "user_name": "Linh", "access_token": backendToken})
	})

	tasks := r.Group("/task", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+backendToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Next()
	})
	tasks.GET("/getOptionTasks/:userID", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{
			{"_id": "t1", "name": "Read chapter 3", "priority": "High", "status": "In Progress", "startDate": "2026-03-02T08:00:00Z", "dueDate": nil},
			{"_id": "t2", "name": "Revise notes", "priority": "Low", "status": "Todo", "dueDate": "2030-01-01T10:00:00Z"},
		}})
	})
	tasks.PUT("/updateTasks/:taskID", func(c *gin.Context) {
		var body struct {
			Status string `json:"status"`
		}
		_ = c.ShouldBindJSON(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failUpdates {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db down"})
			return
		}
		b.statuses[c.Param("taskID")] = append(b.statuses[c.Param("taskID")], body.Status)
		c.JSON(http.StatusOK, gin.H{"message": "updated"})
	})
	tasks.PUT("/update-expired-tasks/:userID", func(c *gin.Context) {
		b.mu.Lock()
		b.expired++
		b.mu.Unlock()
		c.Status(http.StatusNoContent)
	})
	tasks.POST("/suggest-focus-time/:userID", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"suggestion": "Here is my advice:\n\n- **Read chapter 3:** 2 hours (High)\n- **Revise notes:** 30 minutes (Low)\n"})
	})
	tasks.GET("/task-status/:userID", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"datasets": []gin.H{{"data": []int{1, 1, 0, 0}}}})
	})
	tasks.GET("/daily-time-spent/:userID", func(c *gin.Context) {
		b.mu.Lock()
		b.weekStarts = append(b.weekStarts, c.Query("startDate"))
		b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"datasets": []gin.H{{"data": []float64{0.5, 2, 0, 0, 0, 0, 1}}}})
	})
	tasks.POST("/ai-feedback/:userID", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"feedback": "**Key Issues:**\n1. Two tasks expired this week\n\n**Recommendations:**\n* Start Revise notes earlier\n"})
	})
	tasks.POST("/chatbot-ask/:userID", func(c *gin.Context) {
		var body struct {
			Question string `json:"question"`
		}
		_ = c.ShouldBindJSON(&body)
		if strings.Contains(body.Question, "first") {
			c.JSON(http.StatusOK, gin.H{"message": "Read chapter 3, it is due soonest."})
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func newTestApp(t *testing.T, apiURL string, id auth.Identity) (*App, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.New(afero.NewMemMapFs(), "/home/linh/.studyfocus/config.yaml")
	require.NoError(t, err)
	settings, err := cfg.Load()
	require.NoError(t, err)

	settings.APIURL = apiURL
	settings.APITimeout = 5 * time.Second
	settings.DBPath = filepath.Join(t.TempDir(), "studyfocus.db")
	settings.Identity = id

	var out bytes.Buffer
	a := NewApp(cfg, settings, logger.Discard())
	a.Out = &out
	a.In = strings.NewReader("")
	a.TickInterval = time.Millisecond
	t.Cleanup(a.Close)
	return a, &out
}

var signedIn = auth.Identity{UserID: "u1", UserName: "Linh", Token: backendToken}

func TestLoginStoresIdentityAndRefreshesExpired(t *testing.T) {
	b, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, auth.Identity{})

	email, password, err := readCredentials(&App{In: strings.NewReader("linh@example.com\nsecret\n")}, "")
	require.NoError(t, err)
	require.NoError(t, login(context.Background(), a, email, password))

	assert.Equal(t, signedIn, a.Settings.Identity)
	assert.Equal(t, 1, b.expiredCalls())

	saved, err := a.Config.Settings()
	require.NoError(t, err)
	assert.Equal(t, signedIn, saved.Identity)
}

func TestLoginRejected(t *testing.T) {
	_, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, auth.Identity{})

	err := login(context.Background(), a, "linh@example.com", "nope")
	require.Error(t, err)
	assert.False(t, a.Settings.Identity.LoggedIn())
}

func TestReadCredentialsWithEmailFlag(t *testing.T) {
	email, password, err := readCredentials(&App{In: strings.NewReader("secret\n")}, "linh@example.com")
	require.NoError(t, err)
	assert.Equal(t, "linh@example.com", email)
	assert.Equal(t, "secret", password)

	_, _, err = readCredentials(&App{In: strings.NewReader("")}, "linh@example.com")
	assert.Error(t, err)
}

func TestLoadTasksCachesAndFallsBack(t *testing.T) {
	_, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	tasks, err := loadTasks(context.Background(), a, false)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	srv.Close()
	cached, err := loadTasks(context.Background(), a, false)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.Contains(t, out.String(), "Backend unreachable")

	printTasks(a, filterTasks(cached, models.StatusInProgress))
	assert.Contains(t, out.String(), "Read chapter 3")
	assert.NotContains(t, out.String(), "Revise notes")
}

func TestLoadTasksRequiresLogin(t *testing.T) {
	_, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, auth.Identity{})

	_, err := loadTasks(context.Background(), a, false)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestLoadTasksRejectedToken(t *testing.T) {
	_, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, auth.Identity{UserID: "u1", Token: "stale"})

	_, err := loadTasks(context.Background(), a, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login")
}

func TestHeadlessFocusCompletesTask(t *testing.T) {
	b, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)
	a.In = strings.NewReader("y\n")

	err := runFocus(context.Background(), a, focusFlags{taskID: "t1", sessions: 1, work: 1, brk: 1, noUI: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Completed"}, b.statusesFor("t1"))
	assert.Contains(t, out.String(), "All sessions completed")
	assert.Contains(t, out.String(), `"Read chapter 3" marked as Completed`)

	store, err := a.Store()
	require.NoError(t, err)
	cached, err := store.CachedTasks("u1")
	require.NoError(t, err)
	task, err := findTask(cached, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)

	records, err := store.FocusRecordsInRange(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 60, records[0].DurationSeconds)
	assert.Equal(t, models.OutcomeCompleted, records[0].Outcome)
}

func TestHeadlessFocusAsksOnce(t *testing.T) {
	_, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)
	a.In = strings.NewReader("y\n")

	require.NoError(t, runFocus(context.Background(), a, focusFlags{taskID: "t1", sessions: 1, work: 1, brk: 1, noUI: true}))

	assert.Equal(t, 1, strings.Count(out.String(), `Mark "Read chapter 3" as Completed?`))
}

func TestHeadlessFocusCompletionRejected(t *testing.T) {
	b, srv := newBackend(t)
	b.rejectUpdates()
	a, out := newTestApp(t, srv.URL, signedIn)
	a.In = strings.NewReader("y\n")

	require.NoError(t, runFocus(context.Background(), a, focusFlags{taskID: "t1", sessions: 1, work: 1, brk: 1, noUI: true}))

	assert.Contains(t, out.String(), `Could not mark "Read chapter 3" as Completed: db down`)
	assert.Contains(t, out.String(), "did not accept the change")
	assert.NotContains(t, out.String(), "marked as Completed")

	store, err := a.Store()
	require.NoError(t, err)
	cached, err := store.CachedTasks("u1")
	require.NoError(t, err)
	task, err := findTask(cached, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)
}

func TestHeadlessFocusDeclined(t *testing.T) {
	b, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)
	a.In = strings.NewReader("n\n")

	require.NoError(t, runFocus(context.Background(), a, focusFlags{taskID: "t1", sessions: 1, work: 1, brk: 1, noUI: true}))

	assert.Empty(t, b.statusesFor("t1"))
	assert.Contains(t, out.String(), "stays In Progress")
}

func TestHeadlessFocusAbandoned(t *testing.T) {
	b, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	a.TickInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, runFocus(ctx, a, focusFlags{taskID: "t1", sessions: 1, work: 1, brk: 1, noUI: true}))

	assert.Empty(t, b.statusesFor("t1"))
	assert.Contains(t, out.String(), "abandoned")
}

func TestFocusRejectsTaskNotInProgress(t *testing.T) {
	_, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, signedIn)

	err := runFocus(context.Background(), a, focusFlags{taskID: "t2", noUI: true})
	assert.ErrorIs(t, err, focus.ErrInvalidTaskState)
}

func TestFocusArguments(t *testing.T) {
	_, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, signedIn)

	err := runFocus(context.Background(), a, focusFlags{noUI: true})
	assert.ErrorContains(t, err, "task id is required")

	err = runFocus(context.Background(), a, focusFlags{taskID: "missing", noUI: true})
	assert.ErrorContains(t, err, "task missing not found")
}

func TestFocusFlagDefaults(t *testing.T) {
	a := &App{Settings: config.Settings{Sessions: 4, WorkMinutes: 25, BreakMinutes: 5}}

	got := focusFlags{work: 50}.withDefaults(a)
	assert.Equal(t, focusFlags{sessions: 4, work: 50, brk: 5}, got)
}

func TestWeeklyStats(t *testing.T) {
	a, out := newTestApp(t, "http://unused", signedIn)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return now }

	store, err := a.Store()
	require.NoError(t, err)
	require.NoError(t, store.RecordFocus(&models.FocusRecord{
		TaskID: "t1", TaskTitle: "Read chapter 3", Session: 1, DurationSeconds: 1500,
		FinishedAt: report.WeekStart(now).Add(10 * time.Hour),
	}))

	require.NoError(t, weeklyStats(a, 0))
	assert.Contains(t, out.String(), "Read chapter 3")
	assert.Contains(t, out.String(), "25m")

	out.Reset()
	require.NoError(t, weeklyStats(a, 1))
	assert.Contains(t, out.String(), "No focus time recorded")

	assert.Error(t, weeklyStats(a, -1))
}

// runCommand executes a command body against a test App
func runCommand(t *testing.T, a *App, run func(*App)) {
	t.Helper()
	prev := app
	app = a
	t.Cleanup(func() { app = prev })
	run(a)
}

func TestSuggestCommand(t *testing.T) {
	_, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	runCommand(t, a, func(*App) { suggestCmd.Run(suggestCmd, nil) })

	assert.Contains(t, out.String(), "Read chapter 3")
	assert.Contains(t, out.String(), "2h00m")
	assert.Contains(t, out.String(), "30m")
}

func TestExpireCommand(t *testing.T) {
	b, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	runCommand(t, a, func(*App) { expireCmd.Run(expireCmd, nil) })

	assert.Equal(t, 1, b.expiredCalls())
	assert.Contains(t, out.String(), "Overdue tasks refreshed")
}

func TestRemoteStats(t *testing.T) {
	b, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)
	a.Now = func() time.Time { return now }

	require.NoError(t, remoteStats(context.Background(), a, 1))

	assert.Contains(t, out.String(), "Total           2")
	assert.Contains(t, out.String(), "Time spent, week of Feb 23, 2026")
	assert.Contains(t, out.String(), "Tue Feb 24   2.0h  ████")
	assert.Contains(t, out.String(), "Total        3.5h")

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, []string{"2026-02-23"}, b.weekStarts)
}

func TestThemeCommand(t *testing.T) {
	a, out := newTestApp(t, "http://unused", signedIn)

	runCommand(t, a, func(*App) { themeCmd.Run(themeCmd, []string{"light"}) })
	assert.Equal(t, config.ThemeLight, a.Settings.Theme)
	assert.Contains(t, out.String(), "Theme set to light")

	out.Reset()
	runCommand(t, a, func(*App) { themeCmd.Run(themeCmd, []string{"neon"}) })
	assert.Contains(t, out.String(), "Error: unknown theme")
}

func TestWhoamiAndLogout(t *testing.T) {
	a, out := newTestApp(t, "http://unused", signedIn)

	runCommand(t, a, func(*App) { whoamiCmd.Run(whoamiCmd, nil) })
	assert.Contains(t, out.String(), "Linh (u1)")

	out.Reset()
	runCommand(t, a, func(*App) { logoutCmd.Run(logoutCmd, nil) })
	assert.Contains(t, out.String(), "Logged out")
	assert.False(t, a.Settings.Identity.LoggedIn())

	out.Reset()
	runCommand(t, a, func(*App) { whoamiCmd.Run(whoamiCmd, nil) })
	assert.Contains(t, out.String(), "Error: not logged in")
}

func TestSetStatus(t *testing.T) {
	b, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	require.NoError(t, setStatus(context.Background(), a, "t2", "in progress"))
	assert.Equal(t, []string{"In Progress"}, b.statusesFor("t2"))
	assert.Contains(t, out.String(), `"Revise notes" is now In Progress`)

	store, err := a.Store()
	require.NoError(t, err)
	cached, err := store.CachedTasks("u1")
	require.NoError(t, err)
	task, err := findTask(cached, "t2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)

	out.Reset()
	require.NoError(t, setStatus(context.Background(), a, "t1", "doing"))
	assert.Contains(t, out.String(), "already In Progress")
	assert.Empty(t, b.statusesFor("t1"))
}

func TestSetStatusErrors(t *testing.T) {
	b, srv := newBackend(t)
	a, _ := newTestApp(t, srv.URL, signedIn)

	assert.ErrorContains(t, setStatus(context.Background(), a, "t2", "someday"), "invalid status")
	assert.ErrorContains(t, setStatus(context.Background(), a, "t9", "done"), "task t9 not found")

	b.rejectUpdates()
	assert.EqualError(t, setStatus(context.Background(), a, "t2", "done"), "db down")
}

func TestFeedbackCommand(t *testing.T) {
	_, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	runCommand(t, a, func(*App) { feedbackCmd.Run(feedbackCmd, nil) })

	assert.Contains(t, out.String(), "📌 Key Issues\n  1. Two tasks expired this week\n")
	assert.Contains(t, out.String(), "📌 Recommendations\n  - Start Revise notes earlier\n")
}

func TestAskCommand(t *testing.T) {
	_, srv := newBackend(t)
	a, out := newTestApp(t, srv.URL, signedIn)

	runCommand(t, a, func(*App) { askCmd.Run(askCmd, []string{"what", "first?"}) })
	assert.Contains(t, out.String(), "🤖 Read chapter 3, it is due soonest.")

	out.Reset()
	runCommand(t, a, func(*App) { askCmd.Run(askCmd, []string{"hmm"}) })
	assert.Contains(t, out.String(), "couldn't understand")

	out.Reset()
	runCommand(t, a, func(*App) { askCmd.Run(askCmd, []string{"  "}) })
	assert.Contains(t, out.String(), "Error: the question is empty")
}

func TestPrintTasksKeepsMultiByteTitlesIntact(t *testing.T) {
	a, out := newTestApp(t, "http://unused", signedIn)

	printTasks(a, []models.Task{{ID: "t1", Title: "Ôn tập chương ba môn Giải tích ứng dụng", Status: models.StatusTodo}})

	assert.True(t, utf8.ValidString(out.String()))
	assert.Contains(t, out.String(), "Ôn tập chương ba môn Giải tích ứn...")
}
