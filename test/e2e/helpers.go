//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contractiq/contractiq/internal/api/handlers"
	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/parsing"
	"github.com/contractiq/contractiq/internal/repository"
	"github.com/contractiq/contractiq/internal/server"
	"github.com/contractiq/contractiq/internal/service"
	"github.com/contractiq/contractiq/internal/testutil"
	"github.com/contractiq/contractiq/internal/token"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
	AuthToken    string
}

// SetupE2EEnv creates a full E2E test environment with a database container
// and an in-process server. Embeddings are produced by a deterministic local
// embedder so no external API is needed.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Signup registers a fresh account and stores its token on the env
func (e *E2ETestEnv) Signup(username, email, password string) {
	resp, err := e.Post("/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		e.T.Fatalf("failed to sign up: %v", err)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &auth); err != nil {
		e.T.Fatalf("failed to parse signup response: %v", err)
	}
	e.AuthToken = auth.Token
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Upload posts a multipart contract upload
func (e *E2ETestEnv) Upload(filename, contentType string, content []byte, expiryDate, authToken string) (*APIResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if expiryDate != "" {
		if err := writer.WriteField("expiry_date", expiryDate); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.ServerURL+"/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return e.send(req)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	return e.send(req)
}

func (e *E2ETestEnv) send(req *http.Request) (*APIResponse, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// localEmbedder produces deterministic embeddings by hashing word tokens
// onto vector axes. Texts sharing words get similar vectors, which is
// enough signal for retrieval ordering in tests.
type localEmbedder struct{}

func (l *localEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, domain.EmbeddingDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(word))
		axis := binary.BigEndian.Uint32(sum[:4]) % domain.EmbeddingDimensions
		v[axis]++
	}

	var norm float32
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		v[0] = 1
		return v, nil
	}
	inv := 1 / float32(math.Sqrt(float64(norm)))
	for i := range v {
		v[i] *= inv
	}
	return v, nil
}

func (l *localEmbedder) Synthesize(ctx context.Context, question string, matches []*service.ChunkMatch) (string, error) {
	if len(matches) == 0 {
		return "No relevant contract excerpts were found.", nil
	}
	return fmt.Sprintf("Based on %s: %s", matches[0].Filename, matches[0].Content), nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	userRepo := repository.NewUserRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)

	tokenSvc := token.NewService([]byte("e2e-test-secret"))
	authSvc := service.NewAuthService(userRepo, service.NewBcryptHasher(), tokenSvc)

	embedder := &localEmbedder{}
	docSvc := service.NewDocumentService(docRepo, parsing.NewParser(), embedder, nil)
	askSvc := service.NewAskService(chunkRepo, embedder, embedder, service.DefaultTopK)

	router := server.NewRouter(server.RouterConfig{
		TokenValidator:  tokenSvc,
		UserResolver:    authSvc,
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		ContractHandler: handlers.NewContractHandler(docSvc),
		AskHandler:      handlers.NewAskHandler(askSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Errorf("server failed: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)

	// Wait for the server to accept connections
	for i := 0; i < 50; i++ {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 100*time.Millisecond)
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	closer := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}

	return serverURL, closer
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
