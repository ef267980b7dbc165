package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recsys/internal/domain"
	"recsys/internal/recommender"
)

func fittedServer(t *testing.T) *Server {
	t.Helper()
	p := recommender.New(recommender.WithLogger(zerolog.Nop()), recommender.WithDefaultK(2))
	require.NoError(t, p.Fit(domain.Catalog{
		{Title: "A", Description: "space adventure heroes"},
		{Title: "B", Description: "space heroes adventure"},
		{Title: "C", Description: "cooking baking recipes"},
	}))
	return NewServer(p)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, fittedServer(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, healthResponse{Status: "ok", Fitted: true, Items: 3}, body)
}

func TestHealth_Unfitted(t *testing.T) {
	s := NewServer(recommender.New(recommender.WithLogger(zerolog.Nop())))
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","fitted":false,"items":0}`, rec.Body.String())
}

func TestRecommendations(t *testing.T) {
	rec := get(t, fittedServer(t), "/api/v1/recommendations?title=A&k=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body RecommendationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "A", body.Query)
	assert.Equal(t, 1, body.K)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 1, body.Items[0].Rank)
	assert.Equal(t, "B", body.Items[0].Title)
	assert.Equal(t, 1, body.Items[0].Position)
	assert.Greater(t, body.Items[0].Score, 0.9)
}

func TestRecommendations_DefaultK(t *testing.T) {
	rec := get(t, fittedServer(t), "/api/v1/recommendations?title=A")
	require.Equal(t, http.StatusOK, rec.Code)

	var body RecommendationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.K)
	assert.Len(t, body.Items, 2)
}

func TestRecommendations_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"missing title", "/api/v1/recommendations", http.StatusBadRequest, "MISSING_TITLE"},
		{"non-numeric k", "/api/v1/recommendations?title=A&k=abc", http.StatusBadRequest, "INVALID_K"},
		{"zero k", "/api/v1/recommendations?title=A&k=0", http.StatusBadRequest, "INVALID_K"},
		{"unknown title", "/api/v1/recommendations?title=Z", http.StatusNotFound, "TITLE_NOT_FOUND"},
	}
	s := fittedServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRecommendations_NotFitted(t *testing.T) {
	s := NewServer(recommender.New(recommender.WithLogger(zerolog.Nop())))
	rec := get(t, s, "/api/v1/recommendations?title=A")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FITTED")
}

func TestRandomTitle(t *testing.T) {
	rec := get(t, fittedServer(t), "/api/v1/titles/random")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, []string{"A", "B", "C"}, body["title"])
}

func TestRandomTitle_EmptyCatalog(t *testing.T) {
	s := NewServer(recommender.New(recommender.WithLogger(zerolog.Nop())))
	rec := get(t, s, "/api/v1/titles/random")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := fittedServer(t)
	get(t, s, "/api/v1/recommendations?title=A")
	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recsys_")
}
