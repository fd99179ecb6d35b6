package models

import (
	"github.com/google/uuid"
)

// Precedent represents a chunk of a legal-precedent document from the
// vector index.
type Precedent struct {
	ID             uuid.UUID `json:"id"`
	SourceDocument string    `json:"source_document"`
	ChunkIndex     int       `json:"chunk_index"`
	Content        string    `json:"content"`
	Embedding      []float64 `json:"-"`
	Distance       float64   `json:"distance,omitempty"` // Vector similarity distance
	Score          float64   `json:"score,omitempty"`    // Reranker relevance score
}
