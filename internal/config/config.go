// Package config loads and persists studyfocus settings with viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/balkashynov/studyfocus/internal/auth"
)

const (
	envPrefix  = "STUDYFOCUS"
	configName = "config.yaml"
	appDir     = ".studyfocus"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings is the resolved application configuration passed to commands
// and TUI models.
type Settings struct {
	APIURL     string        `validate:"required,url"`
	APITimeout time.Duration `validate:"gt=0"`
	DBPath     string        `validate:"required"`
	LogLevel   string        `validate:"oneof=debug info warn error"`
	LogPath    string        `validate:"required"`

	Theme            string `validate:"oneof=light dark"`
	DetailsCollapsed bool

	Sessions     int `validate:"gt=0"`
	WorkMinutes  int `validate:"gt=0"`
	BreakMinutes int `validate:"gt=0"`

	Identity auth.Identity
}

// DefaultDir returns ~/.studyfocus.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDir), nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api.url", "http://localhost:4000")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("db.path", filepath.Join(dir, "studyfocus.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dir, "studyfocus.log"))

	v.SetDefault("ui.theme", ThemeDark)
	v.SetDefault("ui.details_collapsed", false)

	v.SetDefault("focus.sessions", 4)
	v.SetDefault("focus.work_minutes", 25)
	v.SetDefault("focus.break_minutes", 5)
}

// Store reads and writes the config file on an afero filesystem.
type Store struct {
	v        *viper.Viper
	fs       afero.Fs
	path     string
	validate *validator.Validate
}

// New creates a store for the config file at path. An empty path selects
// ~/.studyfocus/config.yaml.
func New(fs afero.Fs, path string) (*Store, error) {
	dir := ""
	if path == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		path = filepath.Join(dir, configName)
	} else {
		dir = filepath.Dir(path)
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v, dir)

	return &Store{v: v, fs: fs, path: path, validate: validator.New()}, nil
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file if it exists and returns the resolved settings.
func (s *Store) Load() (Settings, error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to check config file: %w", err)
	}
	if exists {
		if err := s.v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", s.path, err)
		}
	}
	return s.Settings()
}

// Settings returns the current settings without touching the file.
func (s *Store) Settings() (Settings, error) {
	settings := Settings{
		APIURL:           strings.TrimRight(s.v.GetString("api.url"), "/"),
		APITimeout:       s.v.GetDuration("api.timeout"),
		DBPath:           s.v.GetString("db.path"),
		LogLevel:         strings.ToLower(s.v.GetString("log.level")),
		LogPath:          s.v.GetString("log.path"),
		Theme:            strings.ToLower(s.v.GetString("ui.theme")),
		DetailsCollapsed: s.v.GetBool("ui.details_collapsed"),
		Sessions:         s.v.GetInt("focus.sessions"),
		WorkMinutes:      s.v.GetInt("focus.work_minutes"),
		BreakMinutes:     s.v.GetInt("focus.break_minutes"),
		Identity: auth.Identity{
			UserID:   s.v.GetString("auth.user_id"),
			UserName: s.v.GetString("auth.user_name"),
			Token:    s.v.GetString("auth.token"),
		},
	}

	if err := s.validate.Struct(settings); err != nil {
		return Settings{}, fmt.Errorf("invalid configuration in %s: %w", s.path, err)
	}
	return settings, nil
}

// SaveIdentity stores the signed-in user.
func (s *Store) SaveIdentity(id auth.Identity) error {
	return s.persist(map[string]any{
		"auth.user_id":   id.UserID,
		"auth.user_name": id.UserName,
		"auth.token":     id.Token,
	})
}

// ClearIdentity forgets the signed-in user.
func (s *Store) ClearIdentity() error {
	return s.SaveIdentity(auth.Identity{})
}

// SetTheme persists the color theme.
func (s *Store) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q (use %s or %s)", theme, ThemeLight, ThemeDark)
	}
	return s.persist(map[string]any{"ui.theme": theme})
}

// SetDetailsCollapsed persists the task details panel state.
func (s *Store) SetDetailsCollapsed(collapsed bool) error {
	return s.persist(map[string]any{"ui.details_collapsed": collapsed})
}

// persist applies values and writes them to the config file next to what
// the file already holds. Defaults and environment overrides stay out of
// the file, and the file is never readable by other users.
func (s *Store) persist(values map[string]any) error {
	for key, value := range values {
		s.v.Set(key, value)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file := viper.New()
	file.SetFs(s.fs)
	file.SetConfigFile(s.path)

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if exists {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", s.path, err)
		}
		if err := s.fs.Chmod(s.path, 0600); err != nil {
			return fmt.Errorf("failed to restrict config file: %w", err)
		}
	} else {
		f, err := s.fs.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	for key, value := range values {
		file.Set(key, value)
	}
	if err := file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
