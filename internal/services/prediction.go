package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"medica-backend/internal/models"
)

const (
	predictionFailedMessage = "Prediction failed"
	maxPredictionBodyBytes  = 1 << 20
)

// PredictionError is returned for every failed /predict call. Message is the
// service's response body when it sent one.
type PredictionError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PredictionError) Error() string { return e.Message }

func (e *PredictionError) Unwrap() error { return e.Err }

// PredictionClient talks to the symptom prediction service over HTTP.
// Requests are sent once, with no retries and no client-side timeout.
type PredictionClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPredictionClient builds a client for baseURL. A nil httpClient gets a
// traced default transport.
func NewPredictionClient(baseURL string, httpClient *http.Client) *PredictionClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &PredictionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Predict posts the symptom text and returns the ranked results.
func (c *PredictionClient) Predict(ctx context.Context, symptoms string, topK int) (*models.PredictionResponse, error) {
	body, err := json.Marshal(models.PredictRequest{Symptoms: symptoms, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, &PredictionError{Message: predictionFailedMessage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &PredictionError{Message: predictionFailedMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPredictionBodyBytes))
	if err != nil {
		return nil, &PredictionError{StatusCode: resp.StatusCode, Message: predictionFailedMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = predictionFailedMessage
		}
		return nil, &PredictionError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out models.PredictionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &PredictionError{StatusCode: resp.StatusCode, Message: predictionFailedMessage, Err: err}
	}

	return &out, nil
}

// Health queries GET /health on the prediction service.
func (c *PredictionClient) Health(ctx context.Context) (*models.PredictionHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction service health check returned %d", resp.StatusCode)
	}

	var health models.PredictionHealth
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}
