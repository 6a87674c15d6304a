package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kettlegourmet/hrm/internal/client"
	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	errNoToken         = errors.New("not logged in: run `hrm login` and set HRM_TOKEN, or pass --token")
	errAccountDisabled = errors.New("account is disabled")
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			c := client.New(opts.apiURL, opts.logger)
			token, err := c.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// Opens an authenticated client and resolves the signed in user into a session
func openSession(ctx context.Context, opts *globalOptions) (*client.Client, workspace.Session, error) {
	if opts.token == "" {
		return nil, workspace.Session{}, errNoToken
	}

	c := client.New(opts.apiURL, opts.logger, client.WithToken(opts.token))
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, workspace.Session{}, fmt.Errorf("failed to resolve current user: %w", err)
	}

	if user.IsDisabled() {
		return nil, workspace.Session{}, errAccountDisabled
	}

	return c, workspace.Session{UserID: user.ID, Role: user.Role}, nil
}

// Registers one --<category> flag per leave category
func addQuotaFlags(cmd *cobra.Command) {
	for _, c := range leave.Categories() {
		cmd.Flags().Int(c.String(), 0, fmt.Sprintf("%s leave days", c))
	}
}

// Overwrites the categories whose flag was given on the command line
func applyQuotaFlags(cmd *cobra.Command, q *leave.Quotas) (bool, error) {
	changed := false
	for _, c := range leave.Categories() {
		if !cmd.Flags().Changed(c.String()) {
			continue
		}
		days, err := cmd.Flags().GetInt(c.String())
		if err != nil {
			return false, err
		}
		q.Set(c, days)
		changed = true
	}
	return changed, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printNotice(w io.Writer, n workspace.Notice) {
	switch n.Level {
	case workspace.LevelNone:
	case workspace.LevelSuccess:
		fmt.Fprintln(w, n.Message)
	default:
		fmt.Fprintf(w, "%s: %s\n", n.Level, n.Message)
	}
}
