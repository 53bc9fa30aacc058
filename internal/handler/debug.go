package handler

import (
	"net/http"
	"strconv"
)

// GET /searches/{searchID}/recommendations/explain
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	searchID, ok := parseSearchID(w, r)
	if !ok {
		return
	}

	exp, err := h.service.Explain(r.Context(), searchID)
	if err != nil {
		h.writeServiceError(w, searchID, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// GET /searches/{searchID}/recommendations/debug
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	searchID, ok := parseSearchID(w, r)
	if !ok {
		return
	}

	var restaurantID *int64
	if idStr := r.URL.Query().Get("restaurant_id"); idStr != "" {
		parsed, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid restaurant_id parameter")
			return
		}
		restaurantID = &parsed
	}

	info, err := h.service.Debug(r.Context(), searchID, restaurantID)
	if err != nil {
		h.writeServiceError(w, searchID, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
