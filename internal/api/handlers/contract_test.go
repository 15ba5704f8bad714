package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/contractiq/contractiq/internal/api/middleware"
	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, userID string) ([]*domain.Document, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, userID string) (*service.DocumentDetail, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentDetail), args.Error(1)
}

func requestWithUserID(method, url string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, "user-456")
	return req.WithContext(ctx)
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestContractHandler_Upload_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewContractHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestInput) bool {
		return input.UserID == "user-456" &&
			input.Filename == "lease.pdf" &&
			input.ContentType == "application/pdf" &&
			string(input.Data) == "pdf bytes"
	})).Return(&service.IngestResult{
		DocumentID:      "doc-123",
		Filename:        "lease.pdf",
		ChunksProcessed: 7,
	}, nil)

	body, formContentType := multipartUpload(t, "lease.pdf", "application/pdf", []byte("pdf bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", formContentType)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-456"))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "doc-123", resp.Data.DocumentID)
	assert.Equal(t, "lease.pdf", resp.Data.Filename)
	assert.Equal(t, 7, resp.Data.ChunksProcessed)
	mockSvc.AssertExpectations(t)
}

func TestContractHandler_Upload_MissingFile(t *testing.T) {
	handler := NewContractHandler(new(MockDocumentService))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-456"))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file is required")
}

func TestContractHandler_Upload_UnsupportedType(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewContractHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFileType)

	body, formContentType := multipartUpload(t, "photo.png", "image/png", []byte("png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", formContentType)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-456"))
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file type")
}

func TestContractHandler_Upload_Unauthorized(t *testing.T) {
	handler := NewContractHandler(new(MockDocumentService))

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContractHandler_List_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewContractHandler(mockSvc)

	uploaded := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	mockSvc.On("List", mock.Anything, "user-456").Return([]*domain.Document{
		{
			ID:         "doc-2",
			UserID:     "user-456",
			Filename:   "newer.pdf",
			UploadedOn: uploaded,
			ExpiryDate: &expiry,
			Status:     domain.DocumentStatusActive,
			RiskScore:  domain.RiskScoreLow,
		},
		{
			ID:         "doc-1",
			UserID:     "user-456",
			Filename:   "older.pdf",
			UploadedOn: uploaded.Add(-24 * time.Hour),
			Status:     domain.DocumentStatusExpired,
			RiskScore:  domain.RiskScoreHigh,
		},
	}, nil)

	req := requestWithUserID(http.MethodGet, "/contracts", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []*ContractSummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "doc-2", resp.Data[0].ID)
	assert.Equal(t, "newer.pdf", resp.Data[0].Name)
	assert.Equal(t, "2027-03-01", resp.Data[0].ExpiryDate)
	assert.Equal(t, "Active", resp.Data[0].Status)
	assert.Equal(t, "Expired", resp.Data[1].Status)
	assert.Equal(t, "High", resp.Data[1].RiskScore)
}

func TestContractHandler_List_Empty(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewContractHandler(mockSvc)

	mockSvc.On("List", mock.Anything, "user-456").Return([]*domain.Document{}, nil)

	req := requestWithUserID(http.MethodGet, "/contracts", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestContractHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewContractHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, "doc-123", "user-456").Return(&service.DocumentDetail{
		Document: &domain.Document{
			ID:         "doc-123",
			UserID:     "user-456",
			Filename:   "lease.pdf",
			UploadedOn: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Status:     domain.DocumentStatusActive,
			RiskScore:  domain.RiskScoreMedium,
		},
		Chunks: []*domain.Chunk{
			{
				ID:       "chunk-1",
				Text:     "termination clause",
				Page:     2,
				Metadata: map[string]interface{}{"page": 2, "contract_name": "lease.pdf"},
			},
		},
	}, nil)

	req := requestWithUserID(http.MethodGet, "/contracts/doc-123", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "doc-123")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ContractDetailResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "doc-123", resp.Data.ID)
	assert.Equal(t, "Medium", resp.Data.RiskScore)
	require.Len(t, resp.Data.Chunks, 1)
	assert.Equal(t, "termination clause", resp.Data.Chunks[0].Text)
	assert.Equal(t, 2, resp.Data.Chunks[0].Page)
	assert.Equal(t, "lease.pdf", resp.Data.Chunks[0].Metadata["contract_name"])
	assert.EqualValues(t, 2, resp.Data.Chunks[0].Metadata["page"])
}

func TestContractHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewContractHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, "doc-999", "user-456").Return(nil, domain.ErrDocumentNotFound)

	req := requestWithUserID(http.MethodGet, "/contracts/doc-999", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "doc-999")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "contract not found")
}
