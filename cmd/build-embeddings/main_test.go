package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDocumentPreservesParagraphs(t *testing.T) {
	content := "First paragraph of the opinion.\n\nSecond paragraph of the opinion."
	chunks := chunkDocument("opinion.txt", content)

	require.Len(t, chunks, 1)
	assert.Equal(t, "opinion.txt", chunks[0].SourceDocument)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Contains(t, chunks[0].Content, "First paragraph")
	assert.Contains(t, chunks[0].Content, "Second paragraph")
}

func TestChunkDocumentSplitsLongText(t *testing.T) {
	para := strings.Repeat("The court considered the evidence at length. ", 20)
	content := para + "\n\n" + para + "\n\n" + para

	chunks := chunkDocument("long.txt", content)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.Content)
		assert.NotEqual(t, [16]byte{}, [16]byte(c.ID))
	}
}

func TestChunkDocumentMergesSmallTail(t *testing.T) {
	para := strings.Repeat("Lengthy analysis of the applicable standard. ", 25)
	content := para + "\n\nAffirmed."

	chunks := chunkDocument("tail.txt", content)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[len(chunks)-1].Content, "Affirmed.")
}

func TestChunkDocumentSkipsBlankInput(t *testing.T) {
	assert.Empty(t, chunkDocument("empty.txt", ""))
	assert.Empty(t, chunkDocument("blank.txt", "\n\n  \n\n"))
}
