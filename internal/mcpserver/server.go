package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"medica-backend/internal/assistant"
	"medica-backend/internal/models"
)

// CheckSymptomsInput is the argument of the check_symptoms tool.
type CheckSymptomsInput struct {
	Symptoms string `json:"symptoms" jsonschema:"free-text description of how the patient feels"`
}

// CheckSymptomsOutput mirrors what the in-app assistant would reply.
type CheckSymptomsOutput struct {
	Reply      string   `json:"reply"`
	Greeting   bool     `json:"greeting"`
	Disease    string   `json:"disease,omitempty"`
	Specialty  string   `json:"specialty,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	FollowUps  []string `json:"follow_ups,omitempty"`

	replies []string
}

// New builds an MCP server exposing the symptom checker as a tool.
func New(predictor assistant.Predictor, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "medica-assistant", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_symptoms",
		Description: "Suggest the most likely condition and the specialist to see for a description of symptoms.",
	}, checkSymptomsHandler(predictor))

	return server
}

// Run serves the tools over stdin/stdout until ctx is done or the client disconnects.
func Run(ctx context.Context, predictor assistant.Predictor, version string) error {
	return New(predictor, version).Run(ctx, &mcp.StdioTransport{})
}

func checkSymptomsHandler(predictor assistant.Predictor) func(context.Context, *mcp.CallToolRequest, CheckSymptomsInput) (*mcp.CallToolResult, CheckSymptomsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in CheckSymptomsInput) (*mcp.CallToolResult, CheckSymptomsOutput, error) {
		out, err := checkSymptoms(ctx, predictor, in.Symptoms)
		if err != nil {
			return nil, CheckSymptomsOutput{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out.text()}},
		}, out, nil
	}
}

// checkSymptoms answers through a throwaway assistant session so the tool
// replies exactly as the in-app chat would.
func checkSymptoms(ctx context.Context, predictor assistant.Predictor, symptoms string) (CheckSymptomsOutput, error) {
	rec := &recordingPredictor{next: predictor}
	session := assistant.NewSession(uuid.New(), rec)
	defer session.Close()

	msgs, err := session.Send(ctx, symptoms)
	if err != nil {
		return CheckSymptomsOutput{}, err
	}
	if len(msgs) < 2 {
		return CheckSymptomsOutput{}, errors.New("symptoms is required")
	}

	out := CheckSymptomsOutput{Greeting: !rec.called}
	for _, m := range msgs[1:] {
		out.replies = append(out.replies, m.Text)
	}
	out.Reply = out.replies[0]

	if rec.resp != nil && len(rec.resp.Results) > 0 {
		top := rec.resp.Results[0]
		out.Disease = top.Disease
		out.Specialty = top.Specialty
		out.Confidence = top.Score
		out.FollowUps = top.FollowUp
	}
	return out, nil
}

// recordingPredictor keeps the raw prediction so the tool can return it as structured output.
type recordingPredictor struct {
	next   assistant.Predictor
	called bool
	resp   *models.PredictionResponse
}

func (p *recordingPredictor) Predict(ctx context.Context, symptoms string, topK int) (*models.PredictionResponse, error) {
	p.called = true
	resp, err := p.next.Predict(ctx, symptoms, topK)
	if err == nil {
		p.resp = resp
	}
	return resp, err
}

func (o CheckSymptomsOutput) text() string {
	return strings.Join(o.replies, "\n")
}
