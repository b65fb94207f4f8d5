// internal/server/handlers/trend.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"trendradar/internal/domain/trend"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TrendReader is the read side of a trend store
type TrendReader interface {
	Get(ctx context.Context, key string) (*trend.Document, error)
	FindTrends(ctx context.Context, filter trend.Filter) ([]trend.Document, error)
}

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	store  TrendReader
	logger zerolog.Logger
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(store TrendReader, logger zerolog.Logger) *TrendHandler {
	return &TrendHandler{
		store:  store,
		logger: logger,
	}
}

// GetTrends returns stored trends, highest score first
func (h *TrendHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := trend.Filter{
		Lifecycle: trend.Lifecycle(q.Get("lifecycle")),
		Platform:  trend.Platform(q.Get("platform")),
		Category:  q.Get("category"),
		Limit:     defaultListLimit,
	}

	if v := q.Get("min_score"); v != "" {
		minScore, err := strconv.Atoi(v)
		if err != nil || minScore < 0 || minScore > 100 {
			h.respondWithError(w, http.StatusBadRequest, "Invalid min_score", nil)
			return
		}
		filter.MinScore = minScore
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			h.respondWithError(w, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		filter.Limit = min(limit, maxListLimit)
	}

	switch filter.Lifecycle {
	case "", trend.LifecycleNew, trend.LifecycleRising, trend.LifecyclePeak, trend.LifecycleDeclining:
	default:
		h.respondWithError(w, http.StatusBadRequest, "Invalid lifecycle", nil)
		return
	}

	docs, err := h.store.FindTrends(r.Context(), filter)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get trends", err)
		return
	}
	if docs == nil {
		docs = []trend.Document{}
	}

	respondWithJSON(w, http.StatusOK, docs)
}

// GetTrend returns a specific trend by key
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, doc)
}

// GetHistory returns the score history of a trend
func (h *TrendHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	history := doc.History
	if history == nil {
		history = []trend.Snapshot{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"key":     doc.Key,
		"trend":   doc.Trend,
		"history": history,
	})
}

func (h *TrendHandler) lookup(w http.ResponseWriter, r *http.Request) (*trend.Document, bool) {
	key := trend.NormalizeKey(chi.URLParam(r, "key"))
	if key == "" {
		h.respondWithError(w, http.StatusBadRequest, "Missing trend key", nil)
		return nil, false
	}

	doc, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, trend.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Trend not found", nil)
		} else {
			h.respondWithError(w, http.StatusInternalServerError, "Failed to get trend", err)
		}
		return nil, false
	}
	return doc, true
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func (h *TrendHandler) respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		h.logger.Error().Err(err).Int("code", code).Msg(message)
	}
	respondWithJSON(w, code, map[string]string{"error": message})
}
