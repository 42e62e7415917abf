package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/helpdesk-ai/supportbot/internal/index"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// Ingestor turns raw knowledge-base text into embedded chunks: chunk,
// embed, persist wholesale, then rebuild the in-memory index. Any
// failure aborts the run and leaves the prior index serving.
type Ingestor struct {
	ai     port.AIProvider
	chunks port.ChunkStore
	index  *index.Index
	target int
}

// NewIngestor wires an ingestor.
func NewIngestor(ai port.AIProvider, chunks port.ChunkStore, ix *index.Index, chunkTargetSize int) *Ingestor {
	if chunkTargetSize <= 0 {
		chunkTargetSize = DefaultChunkSize
	}
	return &Ingestor{ai: ai, chunks: chunks, index: ix, target: chunkTargetSize}
}

// Ingest replaces the chunks of one source with freshly chunked and
// embedded text. Returns the number of chunks produced.
func (ing *Ingestor) Ingest(ctx context.Context, source, text string) (int, error) {
	chunks, err := ChunkText(text, ing.target)
	if err != nil {
		return 0, fmt.Errorf("chunk source %q: %w", source, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ing.ai.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: embed source %q: %v", port.ErrEmbeddingProvider, source, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks", port.ErrEmbeddingProvider, len(vectors), len(chunks))
	}
	for i := 1; i < len(vectors); i++ {
		if len(vectors[i]) != len(vectors[0]) {
			return 0, fmt.Errorf("%w: chunk %d has dimension %d, want %d", port.ErrDimensionMismatch, i, len(vectors[i]), len(vectors[0]))
		}
	}

	for i := range chunks {
		chunks[i].Source = source
		chunks[i].Embedding = vectors[i]
	}

	if err := ing.chunks.ReplaceSource(ctx, source, chunks); err != nil {
		return 0, fmt.Errorf("%w: persist source %q: %v", port.ErrIngestion, source, err)
	}
	if err := ing.Reload(ctx); err != nil {
		return 0, err
	}

	slog.Info("source ingested", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// RemoveSource drops a source's chunks and rebuilds the index.
func (ing *Ingestor) RemoveSource(ctx context.Context, source string) error {
	if err := ing.chunks.ReplaceSource(ctx, source, nil); err != nil {
		return fmt.Errorf("%w: remove source %q: %v", port.ErrIngestion, source, err)
	}
	return ing.Reload(ctx)
}

// Reload rebuilds the in-memory index from persisted chunks and swaps
// it in atomically.
func (ing *Ingestor) Reload(ctx context.Context) error {
	all, err := ing.chunks.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: load chunks: %v", port.ErrIngestion, err)
	}
	if err := ing.index.Swap(all); err != nil {
		return fmt.Errorf("%w: swap index: %v", port.ErrIngestion, err)
	}
	return nil
}

// IngestFile reads a knowledge file and ingests it under its base name.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %v", port.ErrIngestion, path, err)
	}
	return ing.Ingest(ctx, filepath.Base(path), string(data))
}

// IngestDir ingests every .txt and .md file in dir. Files that fail are
// logged and skipped so one bad file cannot block startup.
func (ing *Ingestor) IngestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: read dir %s: %v", port.ErrIngestion, dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !knowledgeFile(e.Name()) {
			continue
		}
		if _, err := ing.IngestFile(ctx, filepath.Join(dir, e.Name())); err != nil {
			slog.Error("ingest file failed", "file", e.Name(), "error", err)
		}
	}
	return nil
}

func knowledgeFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
