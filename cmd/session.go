package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	statusadapter "trendpress/internal/adapters/render/status"
	"trendpress/internal/domain"
)

const sessionStaleAfter = 24 * time.Hour

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored platform sessions",
	}

	cmd.AddCommand(
		newSessionListCmd(app),
		newSessionValidateCmd(app),
		newSessionRevokeCmd(app),
	)

	return cmd
}

func newSessionListCmd(app *app) *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := app.sessionSvc.List(cmd.Context(), domain.Platform(platformName))
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			rendered, err := app.statusRenderer(sessions, statusadapter.RenderOptions{
				Now:        app.now(),
				StaleAfter: sessionStaleAfter,
			})
			if err != nil {
				return fmt.Errorf("render sessions: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Only show sessions for this platform")

	return cmd
}

func newSessionValidateCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <session-id>",
		Short: "Check whether a session still authenticates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := app.sessionSvc.Validate(cmd.Context(), domain.SessionID(args[0]))
			if err != nil {
				return fmt.Errorf("validate session: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Session %s is %s\n", args[0], status)
			return err
		},
	}

	return cmd
}

func newSessionRevokeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <session-id>",
		Short: "Delete a session and its stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.sessionSvc.Revoke(cmd.Context(), domain.SessionID(args[0]))
			if err != nil {
				return fmt.Errorf("revoke session: %w", err)
			}
			if !removed {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Session %s not found\n", args[0])
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Revoked session %s\n", args[0])
			return err
		},
	}

	return cmd
}
