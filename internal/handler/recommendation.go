package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// GET /searches/{searchID}/recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	searchID, ok := parseSearchID(w, r)
	if !ok {
		return
	}

	// 0 means the configured default; larger values are clamped by the service
	topK, ok := queryInt(r, "top_k", 0, 1, 1000)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid top_k parameter")
		return
	}

	result, err := h.service.GetRecommendations(r.Context(), searchID, topK)
	if err != nil {
		h.writeServiceError(w, searchID, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		SearchID:        searchID,
		Recommendations: explainAll(result.Recommendations),
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	})
}

// POST /recommendations
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	recs, err := h.service.Recommend(r.Context(), req.Reference, req.Candidates, req.TopK)
	if err != nil {
		h.writeServiceError(w, 0, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		Recommendations: explainAll(recs),
		Metadata: domain.RecommendationMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(recs),
		},
	})
}

// DELETE /searches/{searchID}/recommendations/cache
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	searchID, ok := parseSearchID(w, r)
	if !ok {
		return
	}
	if err := h.service.InvalidateSearch(r.Context(), searchID); err != nil {
		h.log.Error().Err(err).Int64("search_id", searchID).Msg("cache invalidation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseSearchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	searchID, err := strconv.ParseInt(chi.URLParam(r, "searchID"), 10, 64)
	if err != nil || searchID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid search_id parameter")
		return 0, false
	}
	return searchID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, searchID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrSearchNotFound):
		writeError(w, http.StatusNotFound, "search_not_found",
			fmt.Sprintf("Search with ID %d does not exist", searchID))
	case errors.Is(err, domain.ErrNoReferenceRestaurants):
		writeError(w, http.StatusNotFound, "no_reference_restaurants",
			"No user restaurants found for this search")
	case errors.Is(err, domain.ErrNoCityRestaurants):
		writeError(w, http.StatusNotFound, "no_city_restaurants",
			"No city restaurants found for this search")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
	default:
		h.log.Error().Err(err).Int64("search_id", searchID).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
