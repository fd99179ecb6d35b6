package repository

import (
	"context"
	"fmt"
	"strings"

	"legalai-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmbeddingDimensions is the fixed width of the precedent index vectors.
const EmbeddingDimensions = 768

// PrecedentRepository handles database operations for the legal-precedent
// vector index.
type PrecedentRepository struct {
	db *pgxpool.Pool
}

// NewPrecedentRepository creates a new precedent repository
func NewPrecedentRepository(db *pgxpool.Pool) *PrecedentRepository {
	return &PrecedentRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search returns the limit nearest precedent chunks to the query embedding
// by cosine distance, nearest first.
func (r *PrecedentRepository) Search(
	ctx context.Context,
	embedding []float64,
	limit int,
) ([]models.Precedent, error) {
	if len(embedding) != EmbeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}

	query := `
		SELECT
			id,
			source_document,
			chunk_index,
			content,
			embedding <=> $1::vector AS distance
		FROM legal_precedents
		ORDER BY
			embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, formatVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query precedents: %w", err)
	}
	defer rows.Close()

	var precedents []models.Precedent
	for rows.Next() {
		var p models.Precedent
		err := rows.Scan(
			&p.ID,
			&p.SourceDocument,
			&p.ChunkIndex,
			&p.Content,
			&p.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan precedent: %w", err)
		}
		precedents = append(precedents, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating precedents: %w", err)
	}

	return precedents, nil
}

// CountBySourceDocument reports how many chunks of a source document are
// already indexed. The ingestion tool uses it to skip processed documents.
func (r *PrecedentRepository) CountBySourceDocument(ctx context.Context, sourceDocument string) (int, error) {
	var count int
	err := r.db.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM legal_precedents WHERE source_document = $1",
		sourceDocument,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count precedents for %s: %w", sourceDocument, err)
	}
	return count, nil
}

// InsertMany stores a batch of precedent chunks in one transaction.
func (r *PrecedentRepository) InsertMany(ctx context.Context, precedents []models.Precedent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO legal_precedents (
			id, source_document, chunk_index, content, embedding
		) VALUES ($1, $2, $3, $4, $5::vector)`

	for _, p := range precedents {
		if len(p.Embedding) != EmbeddingDimensions {
			return fmt.Errorf("chunk %d of %s: embedding must be %d dimensions, got %d",
				p.ChunkIndex, p.SourceDocument, EmbeddingDimensions, len(p.Embedding))
		}
		_, err := tx.Exec(ctx, query,
			p.ID, p.SourceDocument, p.ChunkIndex, p.Content, formatVector(p.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d of %s: %w", p.ChunkIndex, p.SourceDocument, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
