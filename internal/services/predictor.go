package services

import (
	"fmt"
	"log"

	"medica-backend/internal/assistant"
	"medica-backend/internal/config"
)

// NewPredictor builds the assistant backend selected by PREDICTION_BACKEND.
// The returned func releases backend resources.
func NewPredictor(cfg *config.Config) (assistant.Predictor, func(), error) {
	switch cfg.PredictionBackend {
	case "", "http":
		log.Printf("✓ Prediction backend: http (%s)", cfg.PredictionBaseURL)
		return NewPredictionClient(cfg.PredictionBaseURL, nil), func() {}, nil
	case "gemini":
		p, err := NewGeminiPredictor(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
		if err != nil {
			return nil, nil, err
		}
		log.Println("✓ Prediction backend: gemini")
		return p, p.Close, nil
	case "openai":
		p, err := NewOpenAIPredictor(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✓ Prediction backend: openai (%s)", cfg.OpenAIModel)
		return p, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown PREDICTION_BACKEND %q (want http, gemini or openai)", cfg.PredictionBackend)
	}
}
