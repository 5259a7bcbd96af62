package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"headliner/internal/pipeline"
	"headliner/internal/store"
	"headliner/internal/usage"
)

// SummarizeRequest is the batch entry-point payload.
type SummarizeRequest struct {
	URLs         []string `json:"urls"`
	Model        string   `json:"model,omitempty"`
	StoreResults *bool    `json:"store_results,omitempty"` // defaults to true
}

// SummarizeResponse wraps a batch outcome.
type SummarizeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleSummarize handles POST /api/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	storeResults := true
	if req.StoreResults != nil {
		storeResults = *req.StoreResults
	}

	ctx := r.Context()
	if s.config.Pipeline.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Pipeline.BatchTimeout)
		defer cancel()
	}

	batch, err := s.pipeline.Run(ctx, req.URLs, model, storeResults)
	if err != nil {
		var invalid *pipeline.InvalidInputError
		if errors.As(err, &invalid) {
			s.respondError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, SummarizeResponse{
		Success: true,
		Message: "batch processed",
		Data: map[string]any{
			"summaries":      batch.Results,
			"total_tokens":   batch.TotalTokens,
			"total_cost_usd": batch.TotalCostUSD,
			"stored":         storeResults,
		},
	})
}

// handleArticles handles GET /api/articles with optional limit,
// source, date_from, and date_to query parameters.
func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	filter := store.QueryFilter{
		Source:   r.URL.Query().Get("source"),
		DateFrom: r.URL.Query().Get("date_from"),
		DateTo:   r.URL.Query().Get("date_to"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	articles, err := s.articles.Query(r.Context(), filter)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(articles),
		"articles": articles,
	})
}

// handleSources handles GET /api/sources.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.articles.ListSources(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(sources),
		"sources": sources,
	})
}

// handleStatistics handles GET /api/statistics.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.articles.Statistics(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"statistics": stats,
	})
}

// handleModels handles GET /api/models.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"available_models": usage.Models(),
		"pricing":          usage.PricingTable(),
		"default_model":    s.defaultModel,
	})
}

// handleHealth handles GET /health. A degraded store reports as
// disconnected but does not fail the endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	graphStatus := "connected"
	if err := s.articles.Connect(r.Context()); err != nil {
		graphStatus = "disconnected"
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"neo4j":     graphStatus,
	})
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", "error", err.Error())
	}
}

// respondError writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, SummarizeResponse{
		Success: false,
		Message: http.StatusText(status),
		Error:   message,
	})
}

// respondStoreError maps store errors to status codes: unavailable
// stores are 503, everything else 500.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}
