package service

import (
	"context"
	"fmt"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// Composer defaults.
const (
	// DefaultSimilarityThreshold is the minimum top score below which the
	// fallback message is returned instead of calling the model.
	DefaultSimilarityThreshold = 0.15

	// DefaultHistoryWindow is how many recent messages are included in
	// the prompt (3 user/assistant exchanges).
	DefaultHistoryWindow = 6
)

// Reply is the composer output for one turn.
type Reply struct {
	Text         string
	UsedFallback bool
}

// Composer turns retrieved context, tone settings and recent history
// into an assistant reply, or substitutes the fallback message when
// retrieval confidence is too low.
type Composer struct {
	ai        port.AIProvider
	threshold float64
	window    int
}

// NewComposer creates a composer. Non-positive threshold or window fall
// back to the defaults.
func NewComposer(ai port.AIProvider, threshold float64, historyWindow int) *Composer {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &Composer{ai: ai, threshold: threshold, window: historyWindow}
}

// Compose builds the reply for a query. When retrieval is empty or its
// top score is below the threshold the fallback message is returned
// verbatim and no generation call is made.
func (c *Composer) Compose(ctx context.Context, query string, retrieval []domain.RetrievalResult, history []domain.Message, settings domain.Settings) (Reply, error) {
	if len(retrieval) == 0 || retrieval[0].Score < c.threshold {
		return Reply{Text: settings.FallbackMessage, UsedFallback: true}, nil
	}

	systemPrompt := fmt.Sprintf(`You are a customer support assistant. %s
Answer the user's question using the provided documentation excerpts.
If the excerpts do not contain the answer, say so instead of guessing.`, settings.ToneInstructions)

	contextParts := make([]string, 0, len(retrieval)+c.window)
	for _, r := range retrieval {
		contextParts = append(contextParts, r.Chunk.Text)
	}
	for _, m := range recentExchanges(history, c.window) {
		contextParts = append(contextParts, fmt.Sprintf("[%s]: %s", m.Role, m.Content))
	}

	text, err := c.ai.Chat(ctx, systemPrompt, query, contextParts)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", port.ErrGeneration, err)
	}
	return Reply{Text: text}, nil
}

// recentExchanges returns the last n user/assistant messages in order.
func recentExchanges(history []domain.Message, n int) []domain.Message {
	var recent []domain.Message
	for i := len(history) - 1; i >= 0 && len(recent) < n; i-- {
		if history[i].Role != domain.RoleUser && history[i].Role != domain.RoleAssistant {
			continue
		}
		recent = append(recent, history[i])
	}
	// Restore chronological order.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent
}
