package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	apperrors "github.com/jrsteele09/credibuy-console/internal/errors"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain and store a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}

			reader := bufio.NewReader(c.stdin)
			if email == "" {
				if email, err = c.prompt(cmd, reader, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.promptSecret(cmd, reader, "Password: "); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			if err := a.Provider.Login(cmd.Context(), email, password); err != nil {
				if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
					return errors.New("invalid email or password")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Provider.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if refresh && a.Provider.Authenticated() {
				if err := a.Provider.RefreshAccessToken(cmd.Context()); err != nil {
					fmt.Fprintf(out, "Refresh failed: %v\n", err)
				}
			}
			if !a.Provider.Authenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintln(out, "Logged in")
			claims, err := a.Provider.Claims(cmd.Context())
			if err != nil {
				// opaque tokens are fine, there is just nothing to show
				return nil
			}
			if claims.UserID != "" {
				fmt.Fprintf(out, "User:    %s\n", claims.UserID)
			}
			if !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh the access token first")
	return cmd
}

func (c *cli) prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret does not echo when stdin is a terminal.
func (c *cli) promptSecret(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return c.prompt(cmd, reader, label)
}
