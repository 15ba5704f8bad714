package repository

import (
	"context"
	"errors"
	"time"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DocumentRepository persists contract documents and their chunks.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// CreateWithChunks persists a document and all of its chunks in a single
// transaction. On any failure nothing is persisted.
func (r *DocumentRepository) CreateWithChunks(ctx context.Context, doc *domain.Document, chunks []*domain.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO documents (id, user_id, filename, uploaded_on, expiry_date, status, risk_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.UserID, doc.Filename, doc.UploadedOn, doc.ExpiryDate, doc.Status, doc.RiskScore,
	)
	if err != nil {
		return err
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (id, document_id, user_id, content, embedding, metadata, page_number, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.DocumentID, c.UserID, c.Text, pgvector.NewVector(c.Embedding), c.Metadata, c.Page, createdAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListByUser returns all documents owned by userID, newest upload first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, filename, uploaded_on, expiry_date, status, risk_score
		 FROM documents WHERE user_id = $1 ORDER BY uploaded_on DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

// GetByIDForUser returns the document only when it is owned by userID.
// A document owned by another user is indistinguishable from one that does
// not exist.
func (r *DocumentRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Document, error) {
	var d domain.Document
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, filename, uploaded_on, expiry_date, status, risk_score
		 FROM documents WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&d.ID, &d.UserID, &d.Filename, &d.UploadedOn, &d.ExpiryDate, &d.Status, &d.RiskScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetChunks returns a document's chunks ordered by page then creation order.
func (r *DocumentRepository) GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, user_id, content, metadata, page_number, created_at
		 FROM chunks WHERE document_id = $1 ORDER BY page_number, created_at, id`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.UserID, &c.Text, &c.Metadata, &c.Page, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// MarkExpired transitions documents whose expiry date has passed to Expired.
// Returns the number of documents updated.
func (r *DocumentRepository) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $1
		 WHERE expiry_date IS NOT NULL AND expiry_date < $2 AND status <> $1`,
		domain.DocumentStatusExpired, asOf,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// MarkRenewalDue transitions active documents expiring within the window to
// Renewal Due. Returns the number of documents updated.
func (r *DocumentRepository) MarkRenewalDue(ctx context.Context, asOf time.Time, window time.Duration) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $1
		 WHERE expiry_date IS NOT NULL AND expiry_date >= $2 AND expiry_date < $3 AND status = $4`,
		domain.DocumentStatusRenewalDue, asOf, asOf.Add(window), domain.DocumentStatusActive,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.UploadedOn, &d.ExpiryDate, &d.Status, &d.RiskScore); err != nil {
			return nil, err
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}
