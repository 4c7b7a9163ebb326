package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trendpress/internal/domain"
)

func newPublishCmd(app *app) *cobra.Command {
	var draftID int64
	var sessionID string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a draft through a stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if draftID <= 0 {
				return fmt.Errorf("--draft is required")
			}
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}

			var outcome domain.PublishOutcome
			err := runWithSpinner(cmd.Context(), cmd.OutOrStdout(), "Publishing...", func(ctx context.Context) error {
				var pubErr error
				outcome, pubErr = app.contentSvc.PublishDraft(ctx, draftID, domain.SessionID(sessionID))
				return pubErr
			})
			if err != nil {
				return fmt.Errorf("publish draft: %w", err)
			}

			switch outcome.Status {
			case domain.OutcomeSuccess:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Published draft %d\n", draftID)
			case domain.OutcomeIndeterminate:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Publish outcome unknown for draft %d: %s\nDiagnostic: %s\n", draftID, outcome.ErrorDetail, outcome.Diagnostic)
			default:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Publish failed for draft %d: %s\n", draftID, outcome.ErrorDetail)
			}
			return err
		},
	}

	cmd.Flags().Int64Var(&draftID, "draft", 0, "Draft ID to publish")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to publish with")

	return cmd
}
