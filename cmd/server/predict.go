package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"medica-backend/internal/assistant"
	"medica-backend/internal/config"
	"medica-backend/internal/services"
	"medica-backend/internal/telemetry"
)

// predictCmd sends one message through a throwaway assistant session.
var predictCmd = &cobra.Command{
	Use:   "predict [symptoms...]",
	Short: "Ask the assistant about a set of symptoms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadAssistant()
		if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
			cfg.PredictionBackend = backend
		}

		shutdownTracing, err := telemetry.InitTracing(cmd.Context(), cfg.OTLPEndpoint, "medica-predict", cfg.Env)
		if err != nil {
			return err
		}
		defer shutdownTracing(context.Background())

		predictor, release, err := services.NewPredictor(cfg)
		if err != nil {
			return err
		}
		defer release()

		session := assistant.NewSession(uuid.New(), predictor)
		defer session.Close()

		replies, err := session.Send(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, m := range replies {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.Role, m.Text)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().StringP("backend", "b", "", "prediction backend: http, gemini or openai")
}
