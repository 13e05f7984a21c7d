// Command clembench runs turn-based text-and-grid game episodes against
// language models and collects the resulting scores.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/paulutsch/clembench/pkg/logger"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clembench",
		Short: "clembench runs turn-based game episodes against language models and scores the transcripts.",
	}

	for _, envFile := range []string{
		".env",
		"../../.env",
		"../../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	logger.Init()

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the clembench version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
