package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with email and password. Both tokens and the user are stored so
later commands and the web console run as this user.

The password is read from standard input when --password is not given:
  echo "$ADMIN_PASSWORD" | console login --email admin@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		email, err := promptIfEmpty(cmd, loginEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(cmd, loginPassword, "Password: ")
		if err != nil {
			return err
		}

		if err := a.Controller.Login(cmd.Context(), email, password); err != nil {
			return flowError(a.Controller.Snapshot(), auth.FlowLogin, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", a.Controller.Snapshot().Session.User.DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	Long: `Revoke the refresh token with the backend and clear the stored session.
The local session is cleared even when the backend cannot be reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.Controller.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		state := a.Controller.Snapshot()
		if !state.Authenticated() {
			fmt.Fprintln(out, "Not signed in")
			return nil
		}

		if u := state.Session.User; u != nil {
			fmt.Fprintf(out, "User:    %s <%s>\n", u.DisplayName(), u.Email)
			fmt.Fprintf(out, "Role:    %s\n", u.Role)
		}
		if claims, err := token.Inspect(state.Session.AccessToken); err == nil {
			fmt.Fprintf(out, "Subject: %s\n", claims.Subject)
		}

		tok, err := a.Coordinator.Token()
		if err != nil {
			return err
		}
		if tok.Expiry.IsZero() {
			fmt.Fprintln(out, "Access:  opaque token")
			return nil
		}
		status := "valid"
		if !tok.Valid() {
			status = "expired, refreshed on next use"
		}
		fmt.Fprintf(out, "Access:  %s until %s\n", status, tok.Expiry.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (read from stdin when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

// promptIfEmpty returns value, or reads one line from stdin after printing prompt
func promptIfEmpty(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := lineReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err != nil {
		return "", fmt.Errorf("read %s%w", strings.ToLower(prompt), err)
	}
	return line, nil
}

// readers keeps one buffered reader per input so consecutive prompts do not
// lose lines buffered by an earlier one
var readers = map[io.Reader]*bufio.Reader{}

func lineReader(r io.Reader) *bufio.Reader {
	if br, ok := readers[r]; ok {
		return br
	}
	br := bufio.NewReader(r)
	readers[r] = br
	return br
}

// flowError prefers the message the controller recorded for the flow
func flowError(state auth.State, flow auth.Flow, err error) error {
	if msg := state.Flow(flow).Message(); msg != "" {
		return errors.New(msg)
	}
	return err
}
