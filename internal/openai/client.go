package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/metrics"
	"github.com/contractiq/contractiq/internal/service"
)

const (
	// DefaultEmbeddingModel supports requesting reduced dimensions
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultChatModel is used for answer synthesis
	DefaultChatModel = openai.GPT4oMini
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when the API returns an embedding of unexpected size
	ErrWrongDimensions = fmt.Errorf("embedding has wrong dimensions, expected %d", domain.EmbeddingDimensions)
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for chat completion
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, system, user string) (string, error)
}

// Client wraps the OpenAI API for embedding and answer synthesis. It
// implements service.EmbeddingClient and service.AnswerSynthesizer.
type Client struct {
	embeddings EmbeddingAPI
	chat       ChatAPI
	dimensions int
}

type OpenAIAdapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
	dimensions     int
}

func NewOpenAIAdapter(apiKey string, embeddingModel openai.EmbeddingModel, chatModel string, dimensions int) *OpenAIAdapter {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	return &OpenAIAdapter{
		client:         openai.NewClient(apiKey),
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		dimensions:     dimensions,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      a.embeddingModel,
		Dimensions: a.dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion calls the OpenAI chat API with a system and user message
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey         string
	EmbeddingModel openai.EmbeddingModel
	ChatModel      string
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	adapter := NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel, cfg.ChatModel, domain.EmbeddingDimensions)
	return &Client{
		embeddings: adapter,
		chat:       adapter,
		dimensions: domain.EmbeddingDimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// EmbedText generates an embedding for the given text
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	embedding, err := c.embeddings.CreateEmbeddings(ctx, text)
	metrics.RecordDependencyLatency("openai_embeddings", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

const synthesisSystemPrompt = `You are a contract analysis assistant. Answer the user's question using only the provided contract excerpts. Cite the source filename when relevant. If the excerpts do not contain the answer, say so plainly.`

// Synthesize composes an answer to the question from the retrieved chunks.
// With no chunks it asks the model for a best-effort low-confidence reply.
func (c *Client) Synthesize(ctx context.Context, question string, matches []*service.ChunkMatch) (string, error) {
	if question == "" {
		return "", ErrEmptyText
	}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")
	if len(matches) == 0 {
		sb.WriteString("No contract excerpts were found for this user.\n")
	} else {
		sb.WriteString("Contract excerpts:\n")
		for i, m := range matches {
			fmt.Fprintf(&sb, "[%d] %s (page %d):\n%s\n\n", i+1, m.Filename, m.Page, m.Content)
		}
	}

	start := time.Now()
	answer, err := c.chat.CreateChatCompletion(ctx, synthesisSystemPrompt, sb.String())
	metrics.RecordDependencyLatency("openai_chat", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}

	return answer, nil
}
