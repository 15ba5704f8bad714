package domain

import (
	"fmt"
	"time"
)

// EmbeddingDimensions is the fixed dimensionality of chunk and query
// embeddings for a deployment. A vector of any other length is a hard
// ingestion error.
const EmbeddingDimensions = 384

// Chunk represents a text fragment extracted from a contract document, with
// its embedding vector. UserID is denormalized from the owning document so
// retrieval can enforce tenant isolation without a join. Chunks are created
// in a batch alongside their document and are immutable thereafter.
type Chunk struct {
	ID         string
	DocumentID string
	UserID     string
	Text       string
	Embedding  []float32
	Metadata   map[string]interface{}
	Page       int
	CreatedAt  time.Time
}

// ValidateChunk validates a Chunk instance, including that its embedding
// matches EmbeddingDimensions and that it is attached to its document's owner.
func ValidateChunk(c *Chunk, owner *Document) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}

	if c.UserID == "" {
		return fmt.Errorf("chunk UserID is required")
	}

	if c.Text == "" {
		return fmt.Errorf("chunk Text is required")
	}

	if len(c.Embedding) != EmbeddingDimensions {
		return ErrEmbeddingDimension
	}

	if owner != nil {
		if c.DocumentID != owner.ID {
			return fmt.Errorf("chunk DocumentID %q does not match document %q", c.DocumentID, owner.ID)
		}
		if c.UserID != owner.UserID {
			return fmt.Errorf("chunk UserID %q does not match document owner %q", c.UserID, owner.UserID)
		}
	}

	return nil
}
