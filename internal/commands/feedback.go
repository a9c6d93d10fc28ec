package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studyfocus/internal/parser"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Ask the AI for feedback on your recent work",
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		id, err := a.Identity()
		if err != nil {
			return err
		}

		raw, err := a.Client().AIFeedback(contextOf(cmd), id.UserID)
		if err != nil {
			return describeAPIError(err)
		}

		sections := parser.ParseFeedback(raw)
		if len(sections) == 0 {
			a.println("No feedback yet, focus on a few tasks first.")
			return nil
		}

		a.println("🧠 AI feedback")
		for _, section := range sections {
			a.println()
			if section.Title != "" {
				a.printf("📌 %s\n", section.Title)
			}
			for _, line := range strings.Split(section.Content, "\n") {
				a.printf("  %s\n", line)
			}
		}
		return nil
	}),
}
