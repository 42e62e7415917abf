package service

import "strings"

// EscalationRules is the declarative rule table deciding when a message
// must be handed to a human agent.
type EscalationRules struct {
	Keywords []string
}

// DefaultEscalationRules returns the stock keyword set.
func DefaultEscalationRules() EscalationRules {
	return EscalationRules{Keywords: []string{"refund", "money back"}}
}

// Detect reports whether the message matches any rule. Matching is a
// case-insensitive substring check, deliberately permissive: "refunded"
// triggers just like "refund". Callers needing whole-word precision
// should pre-tokenize.
func (r EscalationRules) Detect(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
