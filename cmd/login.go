package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trendpress/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a platform through a browser window",
		Long:  "Opens a browser window on the platform's login page and waits for you to complete the login (QR scan or password). The captured session is stored locally.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, app, domain.Platform(platformName))
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", string(domain.PlatformXiaohongshu), "Platform to log in to")

	return cmd
}

func runLogin(cmd *cobra.Command, app *app, p domain.Platform) error {
	job, err := app.sessionSvc.BeginInteractiveLogin(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("start login: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "A browser window is opening for %s. Complete the login there.\n", p)

	var session domain.Session
	err = runWithSpinner(cmd.Context(), cmd.OutOrStdout(), "Waiting for login...", func(ctx context.Context) error {
		var waitErr error
		session, waitErr = job.Wait(ctx)
		return waitErr
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s (session %s)\n", p, session.ID)
	return nil
}
