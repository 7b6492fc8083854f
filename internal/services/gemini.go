package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"medica-backend/internal/models"
)

// GeminiPredictor asks Gemini for a ranked list of likely conditions. It is an
// alternative to the hosted prediction service with the same result shape.
type GeminiPredictor struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewGeminiPredictor(apiKey string, concurrentReqs int) (*GeminiPredictor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini prediction backend")
	}
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.2)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(symptomCheckerInstruction))

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiPredictor{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (p *GeminiPredictor) Close() {
	p.client.Close()
}

// acquireRate blocks until a rate slot is available
func (p *GeminiPredictor) acquireRate(ctx context.Context) error {
	select {
	case <-p.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (p *GeminiPredictor) releaseRate() {
	p.rateChan <- struct{}{}
}

func (p *GeminiPredictor) Predict(ctx context.Context, symptoms string, topK int) (*models.PredictionResponse, error) {
	if err := p.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer p.releaseRate()

	resp, err := p.model.GenerateContent(ctx, genai.Text(buildSymptomPrompt(symptoms, topK)))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	return parsePredictionJSON(extractText(resp), symptoms, topK)
}

const symptomCheckerInstruction = `You are a triage assistant for a hospital app. Given a patient's
description of symptoms, list the most likely conditions. For each, name the medical
specialty of the doctor the patient should see (for example "General Physician",
"Cardiologist", "Dermatologist", "Neurologist"), a confidence score between 0 and 1,
and up to two short follow-up questions that would help narrow the diagnosis.
Never give treatment advice.`

func buildSymptomPrompt(symptoms string, topK int) string {
	return fmt.Sprintf(`Return ONLY a valid JSON object of this shape, with at most %d results ordered by score, highest first:
{"results": [{"disease": "condition name", "specialty": "doctor specialty", "score": 0.0, "follow_up": ["question"]}]}

Symptoms:
%s`, topK, symptoms)
}

// parsePredictionJSON decodes a model reply into a PredictionResponse, ordered
// by score and cut to topK.
func parsePredictionJSON(raw, symptoms string, topK int) (*models.PredictionResponse, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var out models.PredictionResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse prediction JSON: %w", err)
	}

	results := out.Results[:0]
	for _, r := range out.Results {
		if strings.TrimSpace(r.Disease) == "" {
			continue
		}
		if r.Specialty == "" {
			r.Specialty = "General Physician"
		}
		r.Score = clampScore(r.Score)
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	out.Input = symptoms
	out.Results = results
	return &out, nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
