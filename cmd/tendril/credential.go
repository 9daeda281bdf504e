package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/cli"
	"github.com/gratitude5dee/tendril/internal/config"
	"github.com/gratitude5dee/tendril/internal/logging"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage the stored API credential",
	Long: `Reads, sets or clears the credential slot of the configured store backend.
This is the "add it in settings" surface: a key stored here is used directly,
without going through the platform secrets service.`,
}

var credentialSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the API credential",
	Long:  `Prompts for the key without echoing it and writes it to the configured store.`,
	Run: func(cmd *cobra.Command, args []string) {
		node := buildCredentialNode(cmd)

		key, err := cli.PromptForCredential(os.Stdout)
		if err != nil {
			fmt.Printf("Error reading key: %v\n", err)
			os.Exit(1)
		}

		if err := node.SetCredential(cmd.Context(), domain.Credential(key)); err != nil {
			fmt.Printf("Error storing credential: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Credential stored.")
	},
}

var credentialClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API credential",
	Run: func(cmd *cobra.Command, args []string) {
		node := buildCredentialNode(cmd)

		if err := node.ClearCredential(cmd.Context()); err != nil {
			fmt.Printf("Error clearing credential: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Credential cleared.")
	},
}

var credentialStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a credential is stored",
	Long:  `Prints whether the slot holds a key. The key itself is never printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		node := buildCredentialNode(cmd)

		present, err := node.HasCredential(cmd.Context())
		if err != nil {
			fmt.Printf("Error reading credential store: %v\n", err)
			os.Exit(1)
		}
		if present {
			fmt.Println("Credential present.")
		} else {
			fmt.Println("No credential stored.")
		}
	},
}

func buildCredentialNode(cmd *cobra.Command) *tendril.Node {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	node, err := cli.BuildNode(cfg, logging.NewNop())
	if err != nil {
		fmt.Printf("Error initializing tendril: %v\n", err)
		os.Exit(1)
	}
	return node
}

func init() {
	rootCmd.AddCommand(credentialCmd)
	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialClearCmd)
	credentialCmd.AddCommand(credentialStatusCmd)
}
