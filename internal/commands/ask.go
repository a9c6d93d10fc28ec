package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var errEmptyQuestion = errors.New("the question is empty")

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the study assistant a question",
	Long: `Ask the study assistant a question about your tasks and schedule.

Examples:
  studyfocus ask what should I study first today
  studyfocus ask "how much did I focus this week?"`,
	Args: cobra.MinimumNArgs(1),
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		id, err := a.Identity()
		if err != nil {
			return err
		}

		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return errEmptyQuestion
		}

		answer, err := a.Client().Ask(contextOf(cmd), id.UserID, question)
		if err != nil {
			return describeAPIError(err)
		}
		if strings.TrimSpace(answer) == "" {
			answer = "Sorry, I couldn't understand your question."
		}
		a.printf("🤖 %s\n", answer)
		return nil
	}),
}
