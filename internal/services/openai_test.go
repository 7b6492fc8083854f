package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medica-backend/internal/config"
)

func fakeOpenAI(t *testing.T, content string, status int) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func TestOpenAIPredictor_Predict(t *testing.T) {
	content := `{"results":[
		{"disease":"Migraine","specialty":"Neurologist","score":0.4},
		{"disease":"Flu","specialty":"General Physician","score":1.7,"follow_up":["Any chills?"]},
		{"disease":"","specialty":"Dermatologist","score":0.9},
		{"disease":"Common Cold","score":0.2}
	]}`
	srv, body := fakeOpenAI(t, content, http.StatusOK)

	p, err := NewOpenAIPredictor("test-key", srv.URL, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp, err := p.Predict(context.Background(), "fever and headache", 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resp.Input != "fever and headache" {
		t.Errorf("Expected input echoed, got %q", resp.Input)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected results truncated to top_k=2, got %d", len(resp.Results))
	}
	if resp.Results[0].Disease != "Flu" || resp.Results[0].Score != 1 {
		t.Errorf("Expected Flu first with score clamped to 1, got %+v", resp.Results[0])
	}
	if resp.Results[1].Disease != "Migraine" {
		t.Errorf("Expected Migraine second, got %+v", resp.Results[1])
	}

	if (*body)["model"] != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %v", (*body)["model"])
	}
	format, _ := (*body)["response_format"].(map[string]interface{})
	if format["type"] != "json_object" {
		t.Errorf("Expected JSON response format, got %v", (*body)["response_format"])
	}
}

func TestOpenAIPredictor_APIError(t *testing.T) {
	srv, _ := fakeOpenAI(t, "", http.StatusInternalServerError)

	p, err := NewOpenAIPredictor("test-key", srv.URL, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := p.Predict(context.Background(), "cough", 3); err == nil {
		t.Fatal("Expected error from failing API")
	}
}

func TestOpenAIPredictor_InvalidJSON(t *testing.T) {
	srv, _ := fakeOpenAI(t, "I think it is the flu", http.StatusOK)

	p, _ := NewOpenAIPredictor("test-key", srv.URL, "")
	if _, err := p.Predict(context.Background(), "cough", 3); err == nil {
		t.Fatal("Expected error for a non-JSON reply")
	}
}

func TestNewPredictor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
		check   func(t *testing.T, p interface{})
	}{
		{
			name: "empty backend defaults to http",
			cfg:  config.Config{PredictionBaseURL: "http://localhost:5002"},
			check: func(t *testing.T, p interface{}) {
				if _, ok := p.(*PredictionClient); !ok {
					t.Errorf("Expected *PredictionClient, got %T", p)
				}
			},
		},
		{
			name: "http",
			cfg:  config.Config{PredictionBackend: "http", PredictionBaseURL: "http://localhost:5002"},
			check: func(t *testing.T, p interface{}) {
				if _, ok := p.(*PredictionClient); !ok {
					t.Errorf("Expected *PredictionClient, got %T", p)
				}
			},
		},
		{
			name: "openai",
			cfg:  config.Config{PredictionBackend: "openai", OpenAIAPIKey: "test-key", OpenAIModel: "gpt-4o-mini"},
			check: func(t *testing.T, p interface{}) {
				if _, ok := p.(*OpenAIPredictor); !ok {
					t.Errorf("Expected *OpenAIPredictor, got %T", p)
				}
			},
		},
		{name: "openai without key", cfg: config.Config{PredictionBackend: "openai"}, wantErr: true},
		{name: "gemini without key", cfg: config.Config{PredictionBackend: "gemini"}, wantErr: true},
		{name: "unknown backend", cfg: config.Config{PredictionBackend: "bogus"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			p, release, err := NewPredictor(&cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer release()
			tc.check(t, p)
		})
	}
}
