package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/balkashynov/studyfocus/internal/api"
	"github.com/balkashynov/studyfocus/internal/auth"
	"github.com/balkashynov/studyfocus/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the study planner",
	Long: `Sign in with your email and password. The access token is stored in the
config file and expired tasks are refreshed right after signing in.

Examples:
  studyfocus login
  studyfocus login --email linh@example.com
  printf 'linh@example.com\nsecret\n' | studyfocus login`,
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		if term.IsTerminal(int(os.Stdin.Fd())) {
			err := tui.RunLogin(tui.ThemeFor(a.Settings.Theme), email, func(email, password string) error {
				return login(contextOf(cmd), a, email, password)
			})
			if errors.Is(err, tui.ErrCancelled) {
				a.println("❌ Login cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
		} else {
			email, password, err := readCredentials(a, email)
			if err != nil {
				return err
			}
			if err := login(contextOf(cmd), a, email, password); err != nil {
				return err
			}
		}

		a.printf("✅ Signed in as %s\n", a.Settings.Identity.UserName)
		return nil
	}),
}

// readCredentials reads the email (unless given) and password lines from
// non-interactive input
func readCredentials(a *App, email string) (string, string, error) {
	scanner := bufio.NewScanner(a.In)
	next := func(what string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("missing %s on input", what)
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	var err error
	if email == "" {
		if email, err = next("email"); err != nil {
			return "", "", err
		}
	}
	password, err := next("password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// login signs in, stores the identity and refreshes expired tasks
func login(ctx context.Context, a *App, email, password string) error {
	result, err := a.Client().Login(ctx, email, password)
	if err != nil {
		return err
	}

	id := auth.Identity{UserID: result.UserID, UserName: result.UserName, Token: result.AccessToken}
	if err := a.SaveIdentity(id); err != nil {
		return fmt.Errorf("failed to save login: %w", err)
	}
	a.Logger.Info("signed in", "user_id", id.UserID)

	// Best effort, a stale board is not a login failure
	if err := a.Client().RefreshExpired(ctx, id.UserID); err != nil {
		a.Logger.Warn("failed to refresh expired tasks", "error", err)
	}
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login",
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		if !a.Settings.Identity.LoggedIn() {
			a.println("Not logged in.")
			return nil
		}
		if err := a.Config.ClearIdentity(); err != nil {
			return err
		}
		a.Settings.Identity = auth.Identity{}
		a.println("👋 Logged out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: withApp(func(a *App, cmd *cobra.Command, args []string) error {
		id := a.Settings.Identity
		if !id.LoggedIn() {
			return auth.ErrNotLoggedIn
		}

		a.printf("👤 %s (%s)\n", id.UserName, id.UserID)
		a.printf("Backend: %s\n", a.Settings.APIURL)
		if exp, ok := id.ExpiresAt(); ok {
			if id.Expired(a.Now()) {
				a.printf("Token expired at %s\n", exp.Local().Format("02/01/2006 15:04"))
			} else {
				a.printf("Token valid until %s\n", exp.Local().Format("02/01/2006 15:04"))
			}
		}
		return nil
	}),
}

// describeAPIError turns auth failures into a hint
func describeAPIError(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w (run `studyfocus login` again)", err)
	}
	return err
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
}
