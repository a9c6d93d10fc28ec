package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/balkashynov/studyfocus/internal/api"
	"github.com/balkashynov/studyfocus/internal/auth"
	"github.com/balkashynov/studyfocus/internal/config"
	"github.com/balkashynov/studyfocus/internal/db"
)

// App is the application context shared by every command for one
// invocation: settings, identity, logger and the lazily opened database
type App struct {
	Config   *config.Store
	Settings config.Settings
	Logger   *slog.Logger

	In  io.Reader
	Out io.Writer

	// TickInterval drives headless focus runs
	TickInterval time.Duration
	Now          func() time.Time

	store     *db.Store
	logCloser io.Closer
	outMu     sync.Mutex
}

// NewApp creates an App for the loaded settings
func NewApp(cfg *config.Store, settings config.Settings, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Config:       cfg,
		Settings:     settings,
		Logger:       logger,
		In:           os.Stdin,
		Out:          os.Stdout,
		TickInterval: time.Second,
		Now:          time.Now,
	}
}

// Client returns a backend client authenticated as the stored identity
func (a *App) Client() *api.Client {
	return api.NewClient(a.Settings.APIURL, a.Settings.Identity.Token, a.Settings.APITimeout)
}

// Identity returns the signed-in user or an error telling how to sign in
func (a *App) Identity() (auth.Identity, error) {
	id := a.Settings.Identity
	if err := id.Require(a.Now()); err != nil {
		return auth.Identity{}, err
	}
	return id, nil
}

// Store opens the local database on first use
func (a *App) Store() (*db.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := db.Open(a.Settings.DBPath)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// SaveIdentity persists id and makes it the current identity
func (a *App) SaveIdentity(id auth.Identity) error {
	if err := a.Config.SaveIdentity(id); err != nil {
		return err
	}
	a.Settings.Identity = id
	return nil
}

// Close releases the database and log file
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn("failed to close database", "error", err)
		}
		a.store = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// printf and println may be called from status call goroutines
func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.Out, args...)
}
