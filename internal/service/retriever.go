package service

import (
	"context"
	"fmt"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/index"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 3

// Retriever embeds a query and ranks knowledge-base chunks against it.
type Retriever struct {
	ai    port.AIProvider
	index *index.Index
	topK  int
}

// NewRetriever creates a retriever over the given index.
func NewRetriever(ai port.AIProvider, ix *index.Index, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{ai: ai, index: ix, topK: topK}
}

// Retrieve returns up to topK chunks ranked by similarity to the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievalResult, error) {
	vector, err := r.ai.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", port.ErrEmbeddingProvider, err)
	}

	results, err := r.index.Query(vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return results, nil
}
