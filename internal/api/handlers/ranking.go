package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alphaframe/alphaframe/internal/engine"
	"github.com/alphaframe/alphaframe/internal/ranking"
	"github.com/alphaframe/alphaframe/pkg/config"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// RunBroadcaster receives completed run results, typically the
// websocket hub
type RunBroadcaster interface {
	BroadcastRun(result *engine.RunResult)
}

// RankingHandler handles ranking API endpoints
type RankingHandler struct {
	engine      *engine.Engine
	repo        *ranking.Repository
	selector    *ranking.Selector
	broadcaster RunBroadcaster
	cfg         *config.Config
	logger      *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(
	eng *engine.Engine,
	repo *ranking.Repository,
	selector *ranking.Selector,
	broadcaster RunBroadcaster,
	cfg *config.Config,
	log *logger.Logger,
) *RankingHandler {
	return &RankingHandler{
		engine:      eng,
		repo:        repo,
		selector:    selector,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      log,
	}
}

// RunRequest optionally overrides the configured ticker universe
type RunRequest struct {
	Tickers []string `json:"tickers,omitempty"`
}

// RunRanking triggers a full pipeline run
// POST /api/ranking/run
func (h *RankingHandler) RunRanking(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = h.cfg.Strategy.Tickers
	}

	result, err := h.engine.Run(r.Context(), tickers, h.cfg.Risk.PortfolioValue)
	if err != nil {
		h.logger.WithError(err).Error("Pipeline run failed")
		respondError(w, http.StatusInternalServerError, "Pipeline run failed")
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastRun(result)
	}

	respondJSON(w, http.StatusOK, result)
}

// GetLatest returns the most recent persisted ranking
// GET /api/ranking/latest?limit=25
func (h *RankingHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	ranked, err := h.repo.GetSnapshot(r.Context(), time.Now(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get ranking snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve ranking")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(ranked),
		"ranked": ranked,
	})
}

// GetTopPicks returns today's labeled top picks
// GET /api/ranking/picks
func (h *RankingHandler) GetTopPicks(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.repo.GetSnapshot(r.Context(), time.Now(), h.cfg.Strategy.TopN*4)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get ranking snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve picks")
		return
	}

	picks := h.selector.SelectTopPicks(ranked)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(picks),
		"picks": picks,
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
