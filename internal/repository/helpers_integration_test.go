//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func createTestUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) *domain.User {
	t.Helper()

	repo := NewUserRepository(pool)
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     "testuser",
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, user))
	return user
}

// testEmbedding returns a 384-dim vector with a single distinguishing
// component, so cosine ordering in tests is deterministic.
func testEmbedding(axis int) []float32 {
	v := make([]float32, domain.EmbeddingDimensions)
	v[axis%domain.EmbeddingDimensions] = 1
	return v
}

func testChunk(doc *domain.Document, text string, page int, axis int) *domain.Chunk {
	return &domain.Chunk{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Text:       text,
		Embedding:  testEmbedding(axis),
		Metadata:   map[string]interface{}{"contract_name": doc.Filename},
		Page:       page,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}
