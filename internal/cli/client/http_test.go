package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/contracts", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":[{"id":"doc-1","name":"lease.pdf"}]}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(testToken, server.URL)
	require.NoError(t, err)

	resp, err := api.Get("/contracts")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "doc-1")
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is the notice period?", body["query"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"answer":"60 days","confidence":82,"sources":[]}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(testToken, server.URL)
	require.NoError(t, err)

	resp, err := api.Post("/ask", map[string]string{"query": "What is the notice period?"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "60 days")
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"contract not found"}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(testToken, server.URL)
	require.NoError(t, err)

	_, err = api.Get("/contracts/missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "contract not found", apiErr.Message)
}

func TestAPIClient_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(testToken, server.URL)
	require.NoError(t, err)

	_, err = api.Get("/contracts")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestAPIClient_UploadContract(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("termination clause text"), 0600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "note.txt", header.Filename)
		assert.Equal(t, "text/plain", header.Header.Get("Content-Type"))
		assert.Equal(t, "2027-01-31", r.FormValue("expiry_date"))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"document_id":"doc-1","filename":"note.txt","chunks_processed":1}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(testToken, server.URL)
	require.NoError(t, err)

	resp, err := api.UploadContract(tmpFile, "text/plain", "2027-01-31")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "chunks_processed")
}

func TestAPIClient_UploadContract_OmitsEmptyExpiry(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("text"), 0600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasExpiry := r.MultipartForm.Value["expiry_date"]
		assert.False(t, hasExpiry)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"document_id":"doc-1","filename":"note.txt","chunks_processed":1}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig(testToken, server.URL)
	require.NoError(t, err)

	_, err = api.UploadContract(tmpFile, "text/plain", "")
	require.NoError(t, err)
}

func TestAPIClient_UploadContract_MissingFile(t *testing.T) {
	api, err := NewAPIClientWithConfig(testToken, "http://localhost:0")
	require.NoError(t, err)

	_, err = api.UploadContract("/does/not/exist.pdf", "application/pdf", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", detectContentType("lease.PDF"))
	assert.Equal(t, "text/plain", detectContentType("notes.txt"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", detectContentType("msa.docx"))
	assert.Empty(t, detectContentType("image.png"))
}
