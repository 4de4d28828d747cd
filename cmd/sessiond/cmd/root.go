package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessiond",
	Short: "sessiond is a signed-token session registry service",
	Long: `A session registry that issues signed tokens, reaps expired entries
in the background, and persists snapshots to a durable store.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
