package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/actuallystonmai/restaurant-recommender/internal/embedding"
	"github.com/actuallystonmai/restaurant-recommender/internal/model"
	"github.com/actuallystonmai/restaurant-recommender/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func intPtr(i int) *int { return &i }

type stubStore struct {
	refs []domain.RestaurantRecord
	city []domain.RestaurantRecord
}

func (s *stubStore) GetSearch(_ context.Context, id int64) (*domain.Search, error) {
	if id != 1 && id != 2 {
		return nil, domain.ErrSearchNotFound
	}
	return &domain.Search{ID: id}, nil
}

func (s *stubStore) GetReferenceRestaurants(_ context.Context, id int64) ([]domain.RestaurantRecord, error) {
	if id == 2 {
		return nil, nil
	}
	return s.refs, nil
}

func (s *stubStore) GetCityRestaurants(context.Context, int64) ([]domain.RestaurantRecord, error) {
	return s.city, nil
}

func (s *stubStore) CountRestaurants(context.Context, int64) (int, int, error) {
	return len(s.refs), len(s.city), nil
}

func (s *stubStore) GetSearchIDsPaginated(context.Context, int, int) ([]int64, error) {
	return []int64{1, 2}, nil
}

func (s *stubStore) CountSearches(context.Context) (int, error) { return 2, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := &stubStore{
		refs: []domain.RestaurantRecord{
			{ID: 1, Name: "Luigi's", Address: "1 Main St", Cuisine: "Italian", PriceLevel: intPtr(3)},
		},
		city: []domain.RestaurantRecord{
			{ID: 10, Name: "Mario's", Address: "5 Oak St", Cuisine: "Italian", PriceLevel: intPtr(3)},
			{ID: 11, Name: "Sushi Go", Address: "7 Pine St", Cuisine: "Japanese", PriceLevel: intPtr(1)},
		},
	}
	engine, err := model.NewEngine(embedding.NewHashingEncoder(128), model.DefaultOptions())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	h := NewHandler(service.NewService(store, nil, engine))

	r := chi.NewRouter()
	r.Get("/searches/{searchID}/recommendations", h.GetRecommendations)
	r.Get("/searches/{searchID}/recommendations/explain", h.Explain)
	r.Get("/searches/{searchID}/recommendations/debug", h.Debug)
	r.Post("/recommendations", h.Recommend)
	r.Get("/recommendations/batch", h.GetBatchRecommendations)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetRecommendations(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/searches/1/recommendations?top_k=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.SearchID != 1 || resp.Metadata.TotalCount != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Recommendations[0].Name != "Mario's" {
		t.Errorf("expected Mario's first, got %s", resp.Recommendations[0].Name)
	}
	if !strings.Contains(resp.Recommendations[0].Explanation, "cuisine") {
		t.Errorf("expected cuisine in explanation, got %q", resp.Recommendations[0].Explanation)
	}
}

func TestGetRecommendations_Errors(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"bad search id", "/searches/abc/recommendations", http.StatusBadRequest, "invalid_parameter"},
		{"bad top_k", "/searches/1/recommendations?top_k=0", http.StatusBadRequest, "invalid_parameter"},
		{"unknown search", "/searches/9/recommendations", http.StatusNotFound, "search_not_found"},
		{"no references", "/searches/2/recommendations", http.StatusNotFound, "no_reference_restaurants"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, "")
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if errResp.Error != tt.code {
				t.Errorf("expected %s, got %s", tt.code, errResp.Error)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	body := `{
		"reference": [{"id": 1, "name": "Luigi's", "address": "1 Main St", "cuisine": "Italian", "price_level": 3}],
		"candidates": [
			{"id": 10, "name": "Mario's", "address": "5 Oak St", "cuisine": "Italian", "price_level": 3},
			{"id": 11, "name": "Luigi's", "address": "9 Elm St", "cuisine": "Italian"}
		],
		"top_k": 5
	}`
	rec := do(t, newTestRouter(t), http.MethodPost, "/recommendations", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp RecommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].RestaurantID != 10 {
		t.Errorf("expected only Mario's, got %+v", resp.Recommendations)
	}
}

func TestRecommend_Invalid(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"reference":`},
		{"no candidates", `{"reference": [{"name": "A", "address": "x"}], "candidates": []}`},
		{"missing name", `{"reference": [{"address": "x"}], "candidates": [{"name": "B", "address": "y"}]}`},
		{"negative top_k", `{"reference": [{"name": "A", "address": "x"}], "candidates": [{"name": "B", "address": "y"}], "top_k": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/recommendations", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestExplainAndDebug(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/searches/1/recommendations/explain", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("explain: expected 200, got %d", rec.Code)
	}
	var exp domain.Explanation
	if err := json.Unmarshal(rec.Body.Bytes(), &exp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if exp.DataStats.TotalComparisons != 2 {
		t.Errorf("expected 2 comparisons, got %d", exp.DataStats.TotalComparisons)
	}

	rec = do(t, router, http.MethodGet, "/searches/1/recommendations/debug?restaurant_id=11", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("debug: expected 200, got %d", rec.Code)
	}
	var info domain.DebugInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if info.SpecificRestaurant == nil || info.SpecificRestaurant.Name != "Sushi Go" {
		t.Errorf("unexpected debug info: %+v", info)
	}

	rec = do(t, router, http.MethodGet, "/searches/1/recommendations/debug?restaurant_id=x", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad restaurant_id, got %d", rec.Code)
	}
}

func TestGetBatchRecommendations(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/recommendations/batch?page=1&limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp domain.BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Summary.SuccessCount != 1 || resp.Summary.FailedCount != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}

	rec = do(t, router, http.MethodGet, "/recommendations/batch?limit=500", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for limit=500, got %d", rec.Code)
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.RecommendationResult
		want string
	}{
		{
			name: "excellent with features",
			rec: domain.RecommendationResult{SimilarityScore: 0.85, FeatureScores: map[string]float64{
				domain.FeatureCuisine: 0.95, domain.FeatureDescription: 0.9, domain.FeatureTags: 0.85,
				domain.FeatureMenu: 0.81, domain.FeaturePrice: 1,
			}},
			want: "Excellent match: similar atmosphere and style, cuisine, menu offerings",
		},
		{
			name: "very good",
			rec:  domain.RecommendationResult{SimilarityScore: 0.75, FeatureScores: map[string]float64{domain.FeatureCuisine: 0.6}},
			want: "Very good match",
		},
		{
			name: "boundary is exclusive",
			rec:  domain.RecommendationResult{SimilarityScore: 0.5, FeatureScores: map[string]float64{domain.FeatureMenu: 0.8}},
			want: "Moderate match",
		},
		{
			name: "good",
			rec:  domain.RecommendationResult{SimilarityScore: 0.55},
			want: "Good match",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := explain(tt.rec); got != tt.want {
				t.Errorf("explain() = %q, want %q", got, tt.want)
			}
		})
	}
}
