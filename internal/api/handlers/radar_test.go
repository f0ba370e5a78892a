package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "error")
}

func sampleResult() *radar.Result {
	return &radar.Result{
		RunID:       "run-1",
		StrategyID:  "retail_us_v1",
		GeneratedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Signals: []contracts.SignalRow{
			{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Keyword: "sneakers", Trend: 57, Month: "2024-06"},
			{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Keyword: "laptops", Trend: 40, Month: "2024-06"},
		},
		Scored: []contracts.ScoredAggregate{
			{MonthlyAggregate: contracts.MonthlyAggregate{Keyword: "sneakers", Month: "2024-06", Days: 4}},
			{MonthlyAggregate: contracts.MonthlyAggregate{Keyword: "sneakers", Month: "2024-05", Days: 4}},
			{MonthlyAggregate: contracts.MonthlyAggregate{Keyword: "laptops", Month: "2024-06", Days: 4}},
		},
		TopMonths: []contracts.TopMonthEntry{
			{Keyword: "sneakers", Month: "2024-06", ActScore: contracts.Float(0.8)},
		},
		Pivot: &contracts.PivotTable{
			Keywords: []string{"laptops", "sneakers"},
			Months:   []string{"2024-05", "2024-06"},
			Scores:   [][]float64{{0, 0}, {0, 0.8}},
		},
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSignals_NoRunYet(t *testing.T) {
	h := NewRadarHandler(NewResultStore(), nil, testLogger())

	rec := httptest.NewRecorder()
	h.GetSignals(rec, httptest.NewRequest(http.MethodGet, "/api/radar/signals", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSignals_KeywordFilter(t *testing.T) {
	store := NewResultStore()
	store.Set(sampleResult())
	h := NewRadarHandler(store, nil, testLogger())

	rec := httptest.NewRecorder()
	h.GetSignals(rec, httptest.NewRequest(http.MethodGet, "/api/radar/signals?keyword=sneakers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	assert.Equal(t, "run-1", data["run_id"])
}

func TestGetScores_MonthFilter(t *testing.T) {
	store := NewResultStore()
	store.Set(sampleResult())
	h := NewRadarHandler(store, nil, testLogger())

	rec := httptest.NewRecorder()
	h.GetScores(rec, httptest.NewRequest(http.MethodGet, "/api/radar/scores?month=2024-06", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestGetPivot(t *testing.T) {
	store := NewResultStore()
	store.Set(sampleResult())
	h := NewRadarHandler(store, nil, testLogger())

	rec := httptest.NewRecorder()
	h.GetPivot(rec, httptest.NewRequest(http.MethodGet, "/api/radar/pivot", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	pivot := data["pivot"].(map[string]interface{})
	assert.Len(t, pivot["keywords"], 2)
	assert.Len(t, pivot["months"], 2)
}

func TestRefresh(t *testing.T) {
	store := NewResultStore()
	fresh := sampleResult()
	fresh.RunID = "run-2"

	h := NewRadarHandler(store, func(r *http.Request) (*radar.Result, error) {
		return fresh, nil
	}, testLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/radar/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-2", store.Latest().RunID)
}

func TestRefresh_Error(t *testing.T) {
	h := NewRadarHandler(NewResultStore(), func(r *http.Request) (*radar.Result, error) {
		return nil, errors.New("source unavailable")
	}, testLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/radar/refresh", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefresh_Disabled(t *testing.T) {
	h := NewRadarHandler(NewResultStore(), nil, testLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/radar/refresh", nil))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
