package domain

// Chunk is a bounded slice of knowledge-base text with its embedding.
// Chunks are immutable after ingestion; re-ingesting a source replaces
// all of its chunks wholesale.
type Chunk struct {
	ID           string    `json:"id"            db:"id"`
	Source       string    `json:"source"        db:"source"`
	Index        int       `json:"chunk_index"   db:"chunk_index"`
	SourceOffset int       `json:"source_offset" db:"source_offset"`
	Text         string    `json:"text"          db:"content"`
	Embedding    []float32 `json:"-"             db:"vector"`
}

// RetrievalResult pairs a chunk with its similarity score for one query.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
