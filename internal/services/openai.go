package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"medica-backend/internal/models"
)

// OpenAIPredictor produces predictions with an OpenAI-compatible chat model in JSON mode.
type OpenAIPredictor struct {
	client *openai.Client
	model  string
}

// NewOpenAIPredictor builds a predictor. baseURL may point at any
// OpenAI-compatible endpoint; empty means the public API.
func NewOpenAIPredictor(apiKey, baseURL, model string) (*OpenAIPredictor, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for the openai prediction backend")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIPredictor{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (p *OpenAIPredictor) Predict(ctx context.Context, symptoms string, topK int) (*models.PredictionResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: symptomCheckerInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildSymptomPrompt(symptoms, topK)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response generated")
	}

	return parsePredictionJSON(resp.Choices[0].Message.Content, symptoms, topK)
}
