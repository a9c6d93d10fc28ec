package commands

import (
	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/parser"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the AI how long to focus on each task",
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		id, err := a.Identity()
		if err != nil {
			return err
		}

		raw, err := a.Client().SuggestFocusTime(contextOf(cmd), id.UserID)
		if err != nil {
			return describeAPIError(err)
		}

		suggestions := parser.ParseSuggestions(raw)
		if len(suggestions) == 0 {
			// Free-form advice, show it as is
			a.println(raw)
			return nil
		}

		a.println("🤖 Suggested focus time")
		a.println()
		for _, s := range suggestions {
			a.printf("  • %-36s %-12s %s\n", s.Task, parser.FormatRemaining(s.Duration()), s.Priority)
		}
		return nil
	}),
}
