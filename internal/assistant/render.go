package assistant

import (
	"fmt"

	"medica-backend/internal/models"
)

const (
	WelcomeText  = "I am your Virtual Health Assistant. How can I help you today?"
	GreetingText = "👋 Hi there! Please tell me your symptoms so I can help you 😊"
	ApologyText  = "❌ Sorry, I couldn’t analyze that. Please try again."
)

// DiagnosisText renders the top prediction. Score is a fraction in [0,1] and is
// shown as a percentage with one decimal.
func DiagnosisText(r models.PredictionResult) string {
	return fmt.Sprintf("🩺 Possible condition: %s\n👨‍⚕️ Recommended doctor: %s\n📊 Confidence: %.1f%%",
		r.Disease, r.Specialty, r.Score*100)
}

func FollowUpText(question string) string {
	return "🤔 " + question
}
