package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/pkg/logger"
)

// ResultStore holds the latest completed run for serving. Reads vastly
// outnumber writes; a run swap replaces the whole result atomically.
type ResultStore struct {
	mu     sync.RWMutex
	latest *radar.Result
}

// NewResultStore creates an empty result store
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Set replaces the stored result
func (s *ResultStore) Set(result *radar.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

// Latest returns the stored result, or nil when no run completed yet
func (s *ResultStore) Latest() *radar.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// RefreshFunc runs a full pipeline refresh and returns the new result.
type RefreshFunc func(r *http.Request) (*radar.Result, error)

// RadarHandler serves radar result tables from the store.
type RadarHandler struct {
	store   *ResultStore
	refresh RefreshFunc
	logger  *logger.Logger
}

// NewRadarHandler creates a new radar handler. refresh may be nil when
// the deployment serves precomputed results only.
func NewRadarHandler(store *ResultStore, refresh RefreshFunc, log *logger.Logger) *RadarHandler {
	return &RadarHandler{
		store:   store,
		refresh: refresh,
		logger:  log,
	}
}

// GetSignals returns weekly signal rows, optionally filtered by keyword
// GET /api/radar/signals?keyword=sneakers
func (h *RadarHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latestOr503(w)
	if !ok {
		return
	}

	keyword := r.URL.Query().Get("keyword")
	rows := result.Signals
	if keyword != "" {
		filtered := make([]contracts.SignalRow, 0)
		for _, row := range rows {
			if row.Keyword == keyword {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"run_id": result.RunID,
			"count":  len(rows),
			"rows":   rows,
		},
	})
}

// GetScores returns the scored monthly table, optionally filtered
// GET /api/radar/scores?keyword=sneakers&month=2024-06
func (h *RadarHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latestOr503(w)
	if !ok {
		return
	}

	keyword := r.URL.Query().Get("keyword")
	month := r.URL.Query().Get("month")

	rows := make([]contracts.ScoredAggregate, 0, len(result.Scored))
	for _, row := range result.Scored {
		if keyword != "" && row.Keyword != keyword {
			continue
		}
		if month != "" && row.Month != month {
			continue
		}
		rows = append(rows, row)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"run_id": result.RunID,
			"count":  len(rows),
			"rows":   rows,
		},
	})
}

// GetTopMonths returns the top-months table
// GET /api/radar/top
func (h *RadarHandler) GetTopMonths(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latestOr503(w)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"run_id": result.RunID,
			"count":  len(result.TopMonths),
			"rows":   result.TopMonths,
		},
	})
}

// GetPivot returns the keyword x month activation matrix
// GET /api/radar/pivot
func (h *RadarHandler) GetPivot(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latestOr503(w)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"run_id": result.RunID,
			"pivot":  result.Pivot,
		},
	})
}

// Refresh triggers a full refetch and recompute
// POST /api/radar/refresh
func (h *RadarHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresh == nil {
		respondError(w, http.StatusNotImplemented, "Refresh is not enabled on this deployment")
		return
	}

	result, err := h.refresh(r)
	if err != nil {
		h.logger.WithError(err).Error("Refresh failed")
		respondError(w, http.StatusInternalServerError, "Refresh failed: "+err.Error())
		return
	}

	h.store.Set(result)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"run_id":       result.RunID,
			"strategy_id":  result.StrategyID,
			"generated_at": result.GeneratedAt,
			"months":       len(result.Scored),
		},
	})
}

func (h *RadarHandler) latestOr503(w http.ResponseWriter) (*radar.Result, bool) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusServiceUnavailable, "No completed run yet")
		return nil, false
	}
	return result, true
}

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
