package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTrendCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Harvest and browse trending topics",
	}

	cmd.AddCommand(newTrendScrapeCmd(app), newTrendListCmd(app))

	return cmd
}

func newTrendScrapeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the configured hot lists and store new trends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var inserted int
			err := runWithSpinner(cmd.Context(), cmd.OutOrStdout(), "Scraping trend sources...", func(ctx context.Context) error {
				var scrapeErr error
				inserted, scrapeErr = app.contentSvc.ScrapeTrends(ctx)
				return scrapeErr
			})
			if err != nil {
				return fmt.Errorf("scrape trends: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored %d new trends\n", inserted)
			return err
		},
	}
}

func newTrendListCmd(app *app) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored trends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trends, err := app.contentSvc.ListTrends(cmd.Context(), page, size)
			if err != nil {
				return fmt.Errorf("list trends: %w", err)
			}

			if len(trends.Items) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No trends stored. Run 'trendpress trend scrape' first.")
				return err
			}

			for _, trend := range trends.Items {
				used := " "
				if trend.Used {
					used = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [%d] (%s, score %d) %s\n", used, trend.ID, trend.Source, trend.Score, trend.Title)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d (%d trends)\n", trends.Page, trends.TotalPages, trends.Total)
			return err
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().IntVar(&size, "size", 20, "Trends per page")

	return cmd
}
