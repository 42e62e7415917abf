package domain

import "time"

// Settings holds the operator-editable chatbot texts. The composer reads
// a snapshot per turn; the authoritative copy lives in the settings store.
type Settings struct {
	WelcomeMessage   string    `json:"welcome_message"   db:"welcome_message"`
	FallbackMessage  string    `json:"fallback_message"  db:"fallback_message"`
	ToneInstructions string    `json:"tone_instructions" db:"tone_instructions"`
	UpdatedAt        time.Time `json:"updated_at"        db:"updated_at"`
}

// DefaultSettings returns the texts used before an operator saves any.
func DefaultSettings() Settings {
	return Settings{
		WelcomeMessage:   "Hi! How can I help you today?",
		FallbackMessage:  "Sorry, I could not find a good answer in our knowledge base.",
		ToneInstructions: "Answer in a friendly, professional tone. Be clear and concise.",
	}
}
