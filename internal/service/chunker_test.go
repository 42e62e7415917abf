package service

import (
	"strings"
	"testing"

	"github.com/helpdesk-ai/supportbot/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		_, err := ChunkText(input, 500)
		assert.ErrorIs(t, err, port.ErrEmptyInput, "input %q", input)
	}
}

func TestChunkText_SizeBound(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("One short sentence here. ", 80)
	chunks, err := ChunkText(text, 200)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 200)
		assert.NotEmpty(t, c.Text)
	}
}

func TestChunkText_OversizedUnitKeptWhole(t *testing.T) {
	t.Parallel()

	// A single sentence with no boundaries cannot be packed below the
	// target and must become its own chunk, untruncated.
	long := strings.Repeat("word ", 100)
	long = strings.TrimSpace(long) + "."

	chunks, err := ChunkText(long, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0].Text)
	assert.Greater(t, len(chunks[0].Text), 50)
}

func TestChunkText_ParagraphBoundariesFirst(t *testing.T) {
	t.Parallel()

	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	chunks, err := ChunkText(text, 20)
	require.NoError(t, err)

	// Each paragraph fits alone but two do not fit together.
	require.Len(t, chunks, 3)
	assert.Equal(t, "First paragraph.", chunks[0].Text)
	assert.Equal(t, "Second paragraph.", chunks[1].Text)
	assert.Equal(t, "Third paragraph.", chunks[2].Text)
}

func TestChunkText_PacksSmallParagraphs(t *testing.T) {
	t.Parallel()

	text := "Alpha.\n\nBeta.\n\nGamma."
	chunks, err := ChunkText(text, 500)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Alpha.\n\nBeta.\n\nGamma.", chunks[0].Text)
}

func TestChunkText_Deterministic(t *testing.T) {
	t.Parallel()

	text := "IPTV stands for Internet Protocol television. It delivers TV over IP networks.\n\n" +
		"VOD means video on demand. Users pick what to watch and when."

	first, err := ChunkText(text, 120)
	require.NoError(t, err)
	second, err := ChunkText(text, 120)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].SourceOffset, second[i].SourceOffset)
	}
}

func TestChunkText_OffsetsAscending(t *testing.T) {
	t.Parallel()

	text := "One sentence. Two sentence. Three sentence. Four sentence. Five sentence."
	chunks, err := ChunkText(text, 30)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].SourceOffset, chunks[i-1].SourceOffset)
		assert.Equal(t, i, chunks[i].Index)
	}
}

func TestChunkText_IDDependsOnContent(t *testing.T) {
	t.Parallel()

	a, err := ChunkText("Some documentation text.", 500)
	require.NoError(t, err)
	b, err := ChunkText("Different documentation text.", 500)
	require.NoError(t, err)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].ID, b[0].ID)
}
