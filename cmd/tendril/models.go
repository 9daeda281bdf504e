package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the selectable models",
	Long:  `Prints the fixed model catalog in presentation order. The default model is marked with *.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, model := range domain.Catalog() {
			marker := " "
			if model == domain.DefaultModel() {
				marker = "*"
			}
			fmt.Printf(" %s %s\n", marker, model)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
