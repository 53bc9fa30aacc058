package handler

import "net/http"

const (
	defaultBatchLimit = 20
	maxBatchLimit     = 100
	maxBatchPage      = 10000
)

// GET /recommendations/batch
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1, 1, maxBatchPage)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid page parameter")
		return
	}
	limit, ok := queryInt(r, "limit", defaultBatchLimit, 1, maxBatchLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	resp, err := h.service.GetBatchRecommendations(r.Context(), page, limit)
	if err != nil {
		h.log.Error().Err(err).Int("page", page).Int("limit", limit).Msg("batch recommendations failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
