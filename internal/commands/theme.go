package commands

import (
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the color theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark"},
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			a.printf("Theme: %s\n", a.Settings.Theme)
			return nil
		}
		if err := a.Config.SetTheme(args[0]); err != nil {
			return err
		}
		settings, err := a.Config.Settings()
		if err != nil {
			return err
		}
		a.Settings.Theme = settings.Theme
		a.printf("🎨 Theme set to %s\n", a.Settings.Theme)
		return nil
	}),
}
