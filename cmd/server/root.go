package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// rootCmd runs the API server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:     "medica",
	Short:   "Medica hospital services backend",
	Long:    `Medica serves the patient app: accounts, records, appointments, department chat and the symptom-checking assistant.`,
	Version: version,
	RunE:    runServe,
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, predictCmd, mcpCmd)
}
