package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contractiq/contractiq/internal/api"
	"github.com/contractiq/contractiq/internal/api/middleware"
	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/metrics"
	"github.com/contractiq/contractiq/internal/service"
)

// maxUploadMemory caps how much of a multipart upload is buffered in
// memory before spilling to disk.
const maxUploadMemory = 32 << 20

type DocumentService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
	List(ctx context.Context, userID string) ([]*domain.Document, error)
	Get(ctx context.Context, id, userID string) (*service.DocumentDetail, error)
}

type ContractHandler struct {
	svc DocumentService
}

func NewContractHandler(svc DocumentService) *ContractHandler {
	return &ContractHandler{svc: svc}
}

type UploadResponse struct {
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	ChunksProcessed int    `json:"chunks_processed"`
}

type ContractSummaryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UploadedOn string `json:"uploaded_on"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	Status     string `json:"status"`
	RiskScore  string `json:"risk_score"`
}

type ChunkResponse struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Page     int                    `json:"page"`
	Metadata map[string]interface{} `json:"metadata"`
}

type ContractDetailResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	UploadedOn string           `json:"uploaded_on"`
	ExpiryDate string           `json:"expiry_date,omitempty"`
	Status     string           `json:"status"`
	RiskScore  string           `json:"risk_score"`
	Chunks     []*ChunkResponse `json:"chunks"`
}

func contractToSummary(doc *domain.Document) *ContractSummaryResponse {
	expiry := ""
	if doc.ExpiryDate != nil {
		expiry = doc.ExpiryDate.UTC().Format("2006-01-02")
	}
	return &ContractSummaryResponse{
		ID:         doc.ID,
		Name:       doc.Filename,
		UploadedOn: doc.UploadedOn.UTC().Format(time.RFC3339),
		ExpiryDate: expiry,
		Status:     string(doc.Status),
		RiskScore:  string(doc.RiskScore),
	}
}

func (h *ContractHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "file too large or bad request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "could not read file")
		return
	}

	var expiry *time.Time
	if raw := r.FormValue("expiry_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD")
			return
		}
		expiry = &t
	}

	result, err := h.svc.Ingest(r.Context(), service.IngestInput{
		UserID:      userID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		ExpiryDate:  expiry,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	metrics.RecordIngestion(result.ChunksProcessed)

	api.Success(w, http.StatusCreated, UploadResponse{
		DocumentID:      result.DocumentID,
		Filename:        result.Filename,
		ChunksProcessed: result.ChunksProcessed,
	})
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.svc.List(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ContractSummaryResponse, len(docs))
	for i, doc := range docs {
		responses[i] = contractToSummary(doc)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contractID := chi.URLParam(r, "id")
	if contractID == "" {
		api.Error(w, http.StatusBadRequest, "contract id is required")
		return
	}

	detail, err := h.svc.Get(r.Context(), contractID, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	chunks := make([]*ChunkResponse, len(detail.Chunks))
	for i, c := range detail.Chunks {
		chunks[i] = &ChunkResponse{
			ID:       c.ID,
			Text:     c.Text,
			Page:     c.Page,
			Metadata: c.Metadata,
		}
	}

	summary := contractToSummary(detail.Document)
	api.Success(w, http.StatusOK, ContractDetailResponse{
		ID:         summary.ID,
		Name:       summary.Name,
		UploadedOn: summary.UploadedOn,
		ExpiryDate: summary.ExpiryDate,
		Status:     summary.Status,
		RiskScore:  summary.RiskScore,
		Chunks:     chunks,
	})
}
