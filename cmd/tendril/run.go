package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gratitude5dee/tendril/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive prompt session",
	Long: `Starts an interactive session: each line is submitted to the selected
model as one generation. Session commands start with ":" (try :help).`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		headless, _ := cmd.Flags().GetBool("headless")

		err := cli.RunSession(cli.RunOptions{
			ConfigPath: configPath,
			Verbose:    verbose,
			Headless:   headless,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Relay remote progress logs while a request is outstanding")
	runCmd.Flags().Bool("headless", false, "Run without banner and prompts (strict IO)")

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}
