package service

import (
	"context"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/telemetry"
)

// DefaultTopK is the number of chunks retrieved for a question when the
// caller does not configure a limit.
const DefaultTopK = 3

// ChunkMatch is a retrieved chunk scored against a query embedding.
// Similarity is cosine similarity in [−1, 1]; results are ordered from
// most to least similar.
type ChunkMatch struct {
	ChunkID    string
	DocumentID string
	Filename   string
	Content    string
	Page       int
	Similarity float32
}

// ChunkSearchInterface defines the repository interface for embedding search
type ChunkSearchInterface interface {
	SearchByEmbedding(ctx context.Context, userID string, embedding []float32, limit int) ([]*ChunkMatch, error)
}

// EmbeddingClient turns text into fixed-dimension vectors.
type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// AnswerSynthesizer composes a natural-language answer from the question
// and the retrieved context chunks.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question string, matches []*ChunkMatch) (string, error)
}

// SourceRef identifies where part of an answer came from.
type SourceRef struct {
	DocumentID string
	Filename   string
	Page       int
	Snippet    string
	Similarity float32
}

// AskResult is the answer to a question plus the sources that grounded it.
type AskResult struct {
	Answer  string
	Sources []SourceRef
}

// AskService answers questions over a user's ingested contracts.
type AskService struct {
	chunks      ChunkSearchInterface
	embedder    EmbeddingClient
	synthesizer AnswerSynthesizer
	topK        int
}

// NewAskService creates a new AskService instance. topK <= 0 falls back
// to DefaultTopK.
func NewAskService(chunks ChunkSearchInterface, embedder EmbeddingClient, synthesizer AnswerSynthesizer, topK int) *AskService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &AskService{
		chunks:      chunks,
		embedder:    embedder,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// Answer embeds the question, retrieves the top matching chunks owned by
// the user and synthesizes an answer from them. A user with no ingested
// documents gets a low-confidence answer with an empty source list rather
// than an error.
func (s *AskService) Answer(ctx context.Context, userID, question string) (*AskResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AskService.Answer", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "ask",
	})
	defer span.End()

	if question == "" {
		return nil, domain.ErrMissingRequiredField
	}

	embedding, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeDependency,
			Message: "failed to embed question",
			Err:     err,
		}
	}
	if len(embedding) != domain.EmbeddingDimensions {
		return nil, domain.ErrEmbeddingDimension
	}

	matches, err := s.chunks.SearchByEmbedding(ctx, userID, embedding, s.topK)
	if err != nil {
		return nil, err
	}

	answer, err := s.synthesizer.Synthesize(ctx, question, matches)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeDependency,
			Message: "failed to synthesize answer",
			Err:     err,
		}
	}

	sources := make([]SourceRef, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, SourceRef{
			DocumentID: m.DocumentID,
			Filename:   m.Filename,
			Page:       m.Page,
			Snippet:    snippet(m.Content),
			Similarity: m.Similarity,
		})
	}

	return &AskResult{Answer: answer, Sources: sources}, nil
}

// snippetLength bounds the preview returned with each source.
const snippetLength = 200

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return string(runes[:snippetLength]) + "..."
}
