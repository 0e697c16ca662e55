// Package cmd wires the curator CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curator is a content-curation backend for articles, briefs and collections.",
	Long: `Curator ingests articles, groups them into user-defined collections and
stores generated briefs per feed profile.

Run 'curator serve' to expose the JSON API, 'curator ingest' to add an
article from a URL, and 'curator brief' to generate a brief for a profile.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.curator.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewBriefCmd())
}
