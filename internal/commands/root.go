package commands

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/config"
	"github.com/balkashynov/studyfocus/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	app     *App
)

var rootCmd = &cobra.Command{
	Use:   "studyfocus",
	Short: "Focus timer and task client for your study planner",
	Long: `studyfocus signs you in to your study planner, lists your tasks and changes
their status, asks the AI for focus-time suggestions and feedback, and runs a
Pomodoro-style focus timer bound to one "In Progress" task.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand(cmd.CommandPath())
		a, err := loadApp(afero.NewOsFs(), cfgFile)
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

// loadApp reads .env, the config file and opens the log file
func loadApp(fs afero.Fs, path string) (*App, error) {
	// It's okay if .env file doesn't exist
	_ = godotenv.Load()

	cfg, err := config.New(fs, path)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Load()
	if err != nil {
		return nil, err
	}

	logger.SetBasePath(filepath.Dir(settings.LogPath))
	log, closer, err := logger.Setup(fs, settings.LogPath, settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	log.Debug("config loaded", "path", cfg.Path(), "api_url", settings.APIURL)

	a := NewApp(cfg, settings, log)
	a.logCloser = closer
	return a, nil
}

// withApp adapts a command body that needs the App and reports its error
// the same way for every command
func withApp(fn func(a *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := fn(app, cmd, args); err != nil {
			app.Logger.Error("command failed", "command", cmd.Name(), "error", err)
			fmt.Fprintf(app.Out, "Error: %v\n", err)
		}
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	logger.SetVersion(v)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "studyfocus %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.studyfocus/config.yaml)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(expireCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(versionCmd)
}
