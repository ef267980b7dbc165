package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"recsys/internal/catalog"
	"recsys/internal/domain"
	"recsys/internal/logging"
	"recsys/internal/recommender"
)

// ItemResponse is one ranked recommendation.
type ItemResponse struct {
	Rank        int     `json:"rank"`
	Position    int     `json:"position"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// RecommendationsResponse is the body of GET /api/v1/recommendations.
type RecommendationsResponse struct {
	Query string         `json:"query"`
	K     int            `json:"k"`
	Items []ItemResponse `json:"items"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	Fitted bool   `json:"fitted"`
	Items  int    `json:"items"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Fitted: s.rec.State() == recommender.Fitted,
		Items:  s.rec.Len(),
	})
}

// recommendations handles GET /api/v1/recommendations?title=<t>&k=<k>.
// k is optional; when absent the pipeline default applies and is echoed back.
func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		respondError(w, http.StatusBadRequest, "MISSING_TITLE", "query parameter title is required", nil)
		return
	}
	k := s.rec.DefaultK()
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "INVALID_K", "k must be a positive integer", nil)
			return
		}
		k = parsed
	}

	recs, err := s.rec.RecommendScored(title, k)
	switch {
	case errors.Is(err, domain.ErrTitleNotFound):
		respondError(w, http.StatusNotFound, "TITLE_NOT_FOUND", "no catalog item has that exact title", nil)
		return
	case errors.Is(err, domain.ErrNotFitted):
		respondError(w, http.StatusServiceUnavailable, "NOT_FITTED", "recommender is not fitted yet", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "failed to compute recommendations", err)
		return
	}

	respondJSON(w, http.StatusOK, RecommendationsResponse{
		Query: title,
		K:     k,
		Items: lo.Map(recs, func(rec domain.Recommendation, i int) ItemResponse {
			return ItemResponse{
				Rank:        i + 1,
				Position:    rec.Item.Position,
				Title:       rec.Item.Title,
				Description: rec.Item.Description,
				Score:       rec.Score,
			}
		}),
	})
}

func (s *Server) randomTitle(w http.ResponseWriter, _ *http.Request) {
	title, err := catalog.RandomTitle(s.rec.Catalog(), nil)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "EMPTY_CATALOG", "catalog is empty", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"title": title})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Err(err).Str("code", code).Msg("api error")
	}
	respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}
