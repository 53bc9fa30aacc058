package handler

import "github.com/actuallystonmai/restaurant-recommender/internal/domain"

// ExplainedRecommendation is a result with human-readable labels attached.
type ExplainedRecommendation struct {
	domain.RecommendationResult
	Explanation string `json:"explanation"`
}

type RecommendationResponse struct {
	SearchID        int64                     `json:"search_id,omitempty"`
	Recommendations []ExplainedRecommendation `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

// RecommendRequest is the body of POST /recommendations.
type RecommendRequest struct {
	Reference  []domain.RestaurantRecord `json:"reference" validate:"required,min=1,dive"`
	Candidates []domain.RestaurantRecord `json:"candidates" validate:"required,min=1,dive"`
	TopK       int                       `json:"top_k" validate:"gte=0,lte=1000"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
