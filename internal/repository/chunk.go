package repository

import (
	"context"

	"github.com/contractiq/contractiq/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository implements vector search over chunk embeddings.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// SearchByEmbedding returns the chunks owned by userID that are closest to
// the query embedding, by cosine similarity, best first. The user filter is
// the hard tenant isolation boundary: chunks of other users are never
// candidates.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, userID string, embedding []float32, limit int) ([]*service.ChunkMatch, error) {
	if limit <= 0 {
		limit = service.DefaultTopK
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.document_id, d.filename, c.content, c.page_number,
		        1 - (c.embedding <=> $1) AS similarity
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE c.user_id = $2
		 ORDER BY c.embedding <=> $1
		 LIMIT $3`,
		vec, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.ChunkMatch, 0)
	for rows.Next() {
		var m service.ChunkMatch
		if err := rows.Scan(&m.ChunkID, &m.DocumentID, &m.Filename, &m.Content, &m.Page, &m.Similarity); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}

	return results, rows.Err()
}

// CountByUser returns how many chunks the user owns.
func (r *ChunkRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE user_id = $1`,
		userID,
	).Scan(&count)
	return count, err
}
