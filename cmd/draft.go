package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDraftCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate and browse post drafts",
	}

	cmd.AddCommand(newDraftGenerateCmd(app), newDraftListCmd(app))

	return cmd
}

func newDraftGenerateCmd(app *app) *cobra.Command {
	var trendID int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post draft from a stored trend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if trendID <= 0 {
				return fmt.Errorf("--trend is required")
			}

			var draftID int64
			err := runWithSpinner(cmd.Context(), cmd.OutOrStdout(), "Generating draft...", func(ctx context.Context) error {
				draft, genErr := app.contentSvc.GenerateDraft(ctx, trendID)
				if genErr != nil {
					return genErr
				}
				draftID = draft.ID
				return nil
			})
			if err != nil {
				return fmt.Errorf("generate draft: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created draft %d from trend %d\n", draftID, trendID)
			return err
		},
	}

	cmd.Flags().Int64Var(&trendID, "trend", 0, "Trend ID to write about")

	return cmd
}

func newDraftListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored drafts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			drafts, err := app.contentSvc.ListDrafts(cmd.Context())
			if err != nil {
				return fmt.Errorf("list drafts: %w", err)
			}

			if len(drafts) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No drafts stored. Run 'trendpress draft generate' first.")
				return err
			}

			for _, draft := range drafts {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%d] (%s) %s\n", draft.ID, draft.Status, draft.Title)
			}
			return nil
		},
	}
}
