package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	CreateWithChunks(ctx context.Context, doc *domain.Document, chunks []*domain.Chunk) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Document, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Document, error)
	GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error)
}

// ParsedChunk is one unit of extracted text with its source page.
// Page is 1-based; formats without pages report page 1.
type ParsedChunk struct {
	Text string
	Page int
}

// DocumentParser extracts chunk-sized text from an uploaded file.
type DocumentParser interface {
	Parse(ctx context.Context, filename, contentType string, data []byte) ([]ParsedChunk, error)
}

// ObjectArchiver stores the raw uploaded file in object storage.
// Archival is best-effort; the relational store is the source of truth.
type ObjectArchiver interface {
	Archive(ctx context.Context, key string, contentType string, data []byte) error
}

// supportedContentTypes is the upload allow-list. Anything else is
// rejected before parsing.
var supportedContentTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// DocumentService handles ingestion and retrieval of contracts.
type DocumentService struct {
	docRepo  DocumentRepositoryInterface
	parser   DocumentParser
	embedder EmbeddingClient
	archiver ObjectArchiver
	uuidGen  UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance. archiver may
// be nil, in which case raw uploads are not archived.
func NewDocumentService(docRepo DocumentRepositoryInterface, parser DocumentParser, embedder EmbeddingClient, archiver ObjectArchiver) *DocumentService {
	return &DocumentService{
		docRepo:  docRepo,
		parser:   parser,
		embedder: embedder,
		archiver: archiver,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewDocumentServiceWithUUIDGen creates a new DocumentService with custom UUID generator (for testing)
func NewDocumentServiceWithUUIDGen(docRepo DocumentRepositoryInterface, parser DocumentParser, embedder EmbeddingClient, archiver ObjectArchiver, uuidGen UUIDGenerator) *DocumentService {
	return &DocumentService{
		docRepo:  docRepo,
		parser:   parser,
		embedder: embedder,
		archiver: archiver,
		uuidGen:  uuidGen,
	}
}

// IngestInput represents an uploaded contract file
type IngestInput struct {
	UserID      string
	Filename    string
	ContentType string
	Data        []byte
	ExpiryDate  *time.Time
}

// IngestResult summarizes a completed ingestion
type IngestResult struct {
	DocumentID      string
	Filename        string
	ChunksProcessed int
}

// Ingest parses, embeds and persists an uploaded contract. The document
// row and all its chunks are written in one transaction: a failure at any
// step leaves no partial state behind.
func (s *DocumentService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Ingest", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "ingest",
	})
	defer span.End()

	if input.UserID == "" || input.Filename == "" || len(input.Data) == 0 {
		return nil, domain.ErrMissingRequiredField
	}
	if !supportedContentTypes[input.ContentType] {
		return nil, domain.ErrUnsupportedFileType
	}

	parsed, err := s.parser.Parse(ctx, input.Filename, input.ContentType, input.Data)
	if err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeDependency,
			Message: fmt.Sprintf("failed to parse %s", input.Filename),
			Err:     err,
		}
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         s.uuidGen.NewString(),
		UserID:     input.UserID,
		Filename:   input.Filename,
		UploadedOn: now,
		ExpiryDate: input.ExpiryDate,
		Status:     domain.DocumentStatusActive,
		RiskScore:  domain.RiskScoreLow,
	}
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	chunks := make([]*domain.Chunk, 0, len(parsed))
	for _, p := range parsed {
		embedding, err := s.embedder.EmbedText(ctx, p.Text)
		if err != nil {
			return nil, &domain.DomainError{
				Code:    domain.ErrCodeDependency,
				Message: "failed to embed chunk",
				Err:     err,
			}
		}

		chunk := &domain.Chunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			UserID:     doc.UserID,
			Text:       p.Text,
			Embedding:  embedding,
			Metadata: map[string]interface{}{
				"page":          p.Page,
				"contract_name": input.Filename,
			},
			Page:      p.Page,
			CreatedAt: now,
		}
		if err := domain.ValidateChunk(chunk, doc); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	if err := s.docRepo.CreateWithChunks(ctx, doc, chunks); err != nil {
		return nil, err
	}

	if s.archiver != nil {
		key := fmt.Sprintf("%s/%s/%s", doc.UserID, doc.ID, doc.Filename)
		if err := s.archiver.Archive(ctx, key, input.ContentType, input.Data); err != nil {
			log.Printf("archive: failed to store raw upload %s: %v", key, err)
			telemetry.CaptureError(ctx, err)
		}
	}

	return &IngestResult{
		DocumentID:      doc.ID,
		Filename:        doc.Filename,
		ChunksProcessed: len(chunks),
	}, nil
}

// List returns all contracts owned by the user, newest first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.List", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "list",
	})
	defer span.End()

	return s.docRepo.ListByUser(ctx, userID)
}

// DocumentDetail is a contract together with its stored chunks.
type DocumentDetail struct {
	Document *domain.Document
	Chunks   []*domain.Chunk
}

// Get returns a single contract with its chunks. A contract owned by a
// different user yields domain.ErrDocumentNotFound, indistinguishable
// from a contract that does not exist.
func (s *DocumentService) Get(ctx context.Context, id, userID string) (*DocumentDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Get", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	doc, err := s.docRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.docRepo.GetChunks(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	return &DocumentDetail{Document: doc, Chunks: chunks}, nil
}
