package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/contractiq/contractiq/internal/api"
	"github.com/contractiq/contractiq/internal/api/middleware"
	"github.com/contractiq/contractiq/internal/metrics"
	"github.com/contractiq/contractiq/internal/service"
)

type AskService interface {
	Answer(ctx context.Context, userID, question string) (*service.AskResult, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Query string `json:"query"`
}

type SourceResponse struct {
	ContractName string `json:"contract_name"`
	Excerpt      string `json:"excerpt"`
	Page         int    `json:"page"`
	Relevance    int    `json:"relevance"`
}

type AskResponse struct {
	Answer     string            `json:"answer"`
	Confidence int               `json:"confidence"`
	Sources    []*SourceResponse `json:"sources"`
}

// confidence bounds for the answer as a whole
const (
	lowConfidence = 20
	maxConfidence = 99
)

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := h.svc.Answer(r.Context(), userID, req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	metrics.RecordQuestion()

	sources := make([]*SourceResponse, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = &SourceResponse{
			ContractName: src.Filename,
			Excerpt:      src.Snippet,
			Page:         src.Page,
			Relevance:    similarityToScore(src.Similarity),
		}
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer:     result.Answer,
		Confidence: answerConfidence(result.Sources),
		Sources:    sources,
	})
}

// similarityToScore maps cosine similarity to a 0-99 relevance score.
// Scores follow similarity, so a lower-ranked source never outscores a
// higher-ranked one.
func similarityToScore(similarity float32) int {
	score := int(similarity * 100)
	if score < 0 {
		score = 0
	}
	if score > maxConfidence {
		score = maxConfidence
	}
	return score
}

// answerConfidence reports the best source's relevance, or a low floor
// when nothing was retrieved.
func answerConfidence(sources []service.SourceRef) int {
	if len(sources) == 0 {
		return lowConfidence
	}
	return similarityToScore(sources[0].Similarity)
}
