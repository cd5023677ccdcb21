package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"condoctl/internal/authn"
	"condoctl/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Authenticate and store a session token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var username string
		if len(args) == 1 {
			username = args[0]
		} else {
			fmt.Print("Username: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read username: %w", err)
			}
			username = strings.TrimSpace(line)
		}
		if username == "" {
			return fmt.Errorf("username required")
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		s, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := config.SaveToken(client.Token()); err != nil {
			return err
		}
		session.Set(s)
		logger.Debug("session established", zap.String("username", s.Username), zap.String("role", s.Role))
		fmt.Printf("Logged in as %s (%s)\n", s.Username, s.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and drop the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		// The token is dropped locally even when the server call fails;
		// a dead session should never strand the user logged in.
		logoutErr := client.Logout(cmd.Context())
		if err := config.SaveToken(""); err != nil {
			return err
		}
		session.Set(authn.Session{})
		if logoutErr != nil {
			logger.Debug("server-side logout failed", zap.Error(logoutErr))
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session identity and role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		s, err := requireSession(cmd.Context(), client)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", s.Username, s.Role)
		return nil
	},
}

// readPassword prompts without echoing. When stdin is not a terminal
// (piped input, tests) it falls back to a plain line read.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
