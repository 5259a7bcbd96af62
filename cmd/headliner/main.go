package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "headliner",
	Short: "Headliner summarizes news articles and stores them in a graph",
	Long: `Headliner ingests news-article URLs, extracts headline, publication
date, and source, produces an AP-style summary via an LLM, and persists
the result into a Neo4j graph with idempotent upsert semantics.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.headliner.yaml)")
	rootCmd.AddCommand(serveCmd)
}
