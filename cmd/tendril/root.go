package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tendril",
	Short: "Tendril is an interactive text-generation node",
	Long: `Tendril runs the behavioral core of a text-generation editor node:
it resolves an API credential, submits prompts to a remote inference
endpoint, and exposes the request lifecycle as observable state.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (default tendril.yaml if present)")
}
