package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// DefaultChunkSize is the target chunk size in bytes.
const DefaultChunkSize = 500

// unit is a packable slice of source text: a paragraph, or a sentence of
// a paragraph that is too large to pack whole.
type unit struct {
	text   string
	offset int
	para   int
}

// ChunkText splits knowledge-base text into bounded chunks. Paragraphs
// are the primary split boundary; paragraphs larger than targetSize are
// split into sentences. Units are packed greedily until the next one
// would exceed targetSize. A single unit larger than targetSize becomes
// its own oversized chunk rather than being truncated.
//
// The same input always yields the same chunks and ids.
func ChunkText(text string, targetSize int) ([]domain.Chunk, error) {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil, port.ErrEmptyInput
	}

	var units []unit
	for _, p := range splitParagraphs(text) {
		if len(p.text) <= targetSize {
			units = append(units, p)
			continue
		}
		units = append(units, splitSentences(p)...)
	}

	var chunks []domain.Chunk
	var cur []unit
	curLen := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ID:           chunkID(cur[0].offset, joinUnits(cur)),
			Index:        len(chunks),
			SourceOffset: cur[0].offset,
			Text:         joinUnits(cur),
		})
		cur = nil
		curLen = 0
	}

	for _, u := range units {
		sep := 0
		if len(cur) > 0 {
			sep = len(separator(cur[len(cur)-1], u))
		}
		if len(cur) > 0 && curLen+sep+len(u.text) > targetSize {
			flush()
		}
		if len(cur) > 0 {
			curLen += len(separator(cur[len(cur)-1], u))
		}
		cur = append(cur, u)
		curLen += len(u.text)
	}
	flush()

	return chunks, nil
}

// splitParagraphs splits on blank lines and records the byte offset of
// each paragraph in the original text.
func splitParagraphs(text string) []unit {
	var units []unit
	offset := 0
	for i, raw := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
			units = append(units, unit{text: trimmed, offset: offset + lead, para: i})
		}
		offset += len(raw) + len("\n\n")
	}
	return units
}

// splitSentences breaks an oversized paragraph into sentence units.
// A sentence ends at '.', '!' or '?' followed by whitespace or the end
// of the paragraph.
func splitSentences(p unit) []unit {
	var units []unit
	start := 0
	emit := func(end int) {
		raw := p.text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
			units = append(units, unit{text: trimmed, offset: p.offset + start + lead, para: p.para})
		}
		start = end
	}

	for i := 0; i < len(p.text); i++ {
		switch p.text[i] {
		case '.', '!', '?':
			if i+1 == len(p.text) || p.text[i+1] == ' ' || p.text[i+1] == '\n' || p.text[i+1] == '\t' {
				emit(i + 1)
			}
		}
	}
	emit(len(p.text))
	return units
}

// separator returns the join string between two packed units: a space
// between sentences of the same paragraph, a blank line otherwise.
func separator(prev, next unit) string {
	if prev.para == next.para {
		return " "
	}
	return "\n\n"
}

func joinUnits(units []unit) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteString(separator(units[i-1], u))
		}
		b.WriteString(u.text)
	}
	return b.String()
}

// chunkID derives a deterministic id from the chunk's position and text.
func chunkID(offset int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", offset, text)))
	return hex.EncodeToString(sum[:8])
}
