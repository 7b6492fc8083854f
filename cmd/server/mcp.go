package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"medica-backend/internal/config"
	"medica-backend/internal/mcpserver"
	"medica-backend/internal/services"
	"medica-backend/internal/telemetry"
)

// mcpCmd serves the check_symptoms tool over stdio. Stdout carries the
// protocol, so all logging goes to stderr.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the symptom checker as an MCP tool over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadAssistant()

		shutdownTracing, err := telemetry.InitTracing(cmd.Context(), cfg.OTLPEndpoint, "medica-mcp", cfg.Env)
		if err != nil {
			return err
		}
		defer shutdownTracing(context.Background())

		predictor, release, err := services.NewPredictor(cfg)
		if err != nil {
			return err
		}
		defer release()

		log.Printf("✓ MCP server ready (backend: %s)", cfg.PredictionBackend)
		return mcpserver.Run(cmd.Context(), predictor, version)
	},
}
