package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gkobilansky/abreport/internal/stats"
	"github.com/gkobilansky/abreport/internal/store"
	"go.uber.org/zap"
)

type HealthResponse struct {
	Status        string `json:"status"`
	TestsCount    int    `json:"tests_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tests, err := s.provider.ListTests(r.Context())
	if err != nil {
		s.logger.Error("failed to list tests", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		TestsCount:    len(tests),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

// apiTestSummary is one entry of GET /api/tests.
type apiTestSummary struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Status       string             `json:"status"`
	Outcome      string             `json:"outcome"`
	StartDate    time.Time          `json:"start_date"`
	EndDate      time.Time          `json:"end_date"`
	TrafficSplit store.TrafficSplit `json:"traffic_split"`
	HasResults   bool               `json:"has_results"`
}

// apiTestDetail is the full test document plus its derived state.
type apiTestDetail struct {
	*store.Test
	Status  string `json:"status"`
	Outcome string `json:"outcome"`
}

func (s *Server) handleTestsAPI(w http.ResponseWriter, r *http.Request) {
	tests, err := s.provider.ListTests(r.Context())
	if err != nil {
		s.logger.Error("failed to list tests", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to load tests")
		return
	}

	now := s.now()
	summaries := make([]apiTestSummary, len(tests))
	for i, t := range tests {
		summaries[i] = apiTestSummary{
			ID:           t.ID,
			Name:         t.Name,
			Status:       string(stats.Status(t.StartDate, t.EndDate, now)),
			Outcome:      stats.WinnerText(t.Results),
			StartDate:    t.StartDate,
			EndDate:      t.EndDate,
			TrafficSplit: t.TrafficSplit,
			HasResults:   t.Results != nil,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tests": summaries,
	})
}

func (s *Server) handleTestAPI(w http.ResponseWriter, r *http.Request) {
	t, err := s.provider.GetTest(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to get test", zap.String("id", r.PathValue("id")), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to load test")
		return
	}

	writeJSON(w, http.StatusOK, apiTestDetail{
		Test:    t,
		Status:  string(stats.Status(t.StartDate, t.EndDate, s.now())),
		Outcome: stats.WinnerText(t.Results),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
