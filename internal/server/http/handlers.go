package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/scholarly/insights-service/internal/domain"
)

// Limit bounds for the list endpoints.
const (
	defaultLimit = 20
	minLimit     = 1
	maxLimit     = 100
)

type searchResponse struct {
	Results []domain.ResearchResult `json:"results"`
	Count   int                     `json:"count"`
}

type expertContentResponse struct {
	Results []domain.ExpertContent `json:"results"`
	Count   int                    `json:"count"`
}

// searchHandler handles GET /api/v1/search?q=&limit=.
//
// Provider outages never surface as errors here: a degraded or empty result
// set is still a 200.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := clampLimit(r.URL.Query().Get("limit"))

	results, err := s.service.Search(r.Context(), query, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results, Count: len(results)})
}

// expertContentHandler handles GET /api/v1/expert-content?q=&limit=.
func (s *Server) expertContentHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := clampLimit(r.URL.Query().Get("limit"))

	results, err := s.service.SearchExpertContent(r.Context(), query, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expertContentResponse{Results: results, Count: len(results)})
}

// insightsHandler handles GET /api/v1/insights?title=&keywords=a,b.
func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'title' is required")
		return
	}
	keywords := splitKeywords(r.URL.Query().Get("keywords"))

	insights, err := s.service.GetInsights(r.Context(), title, keywords)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insights)
}

// writeServiceError maps facade errors to HTTP statuses. The facade only
// returns invalid-input errors; anything else is an internal error.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error().Err(err).Msg("aggregation failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// clampLimit parses the limit parameter, bounding it to [1, 100] with a
// default of 20. Unparseable values fall back to the default.
func clampLimit(raw string) int {
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return defaultLimit
	}
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// splitKeywords splits the comma-separated keywords parameter, dropping
// blank entries.
func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}
