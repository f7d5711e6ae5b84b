package main

import (
	"os"

	"github.com/spf13/cobra"

	"dentcheck/internal/config"
	"dentcheck/pkg/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dentcheck",
		Short: "Dental checkup tracking service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.LoadEnv()
			config.Load()
		},
		Run: runServe,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API (default)",
			Run:   runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			Run:   runMigrate,
		},
		newSeedCmd(),
		newTokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
