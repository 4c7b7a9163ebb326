package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trendpress",
		Short:         "trendpress: harvest trends, draft posts and publish them",
		Long:          "trendpress scrapes trending topics, generates post drafts with an LLM, and publishes them to social platforms through a locally driven browser session.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newSessionCmd(app),
		newTrendCmd(app),
		newDraftCmd(app),
		newPublishCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
