package domain

// Feature names used as keys of FeatureScores.
const (
	FeatureCuisine     = "cuisine"
	FeaturePrice       = "price"
	FeatureDescription = "description"
	FeatureReview      = "review"
	FeatureMenu        = "menu"
	FeatureTags        = "tags"
)

// FeatureNames lists every scored feature in a fixed order.
var FeatureNames = []string{
	FeatureCuisine,
	FeaturePrice,
	FeatureDescription,
	FeatureReview,
	FeatureMenu,
	FeatureTags,
}

type RecommendationResult struct {
	RestaurantID    int64              `json:"restaurant_id"`
	Name            string             `json:"restaurant_name"`
	Address         string             `json:"address"`
	POIID           string             `json:"tomtom_poi_id"`
	SimilarityScore float64            `json:"similarity_score"`
	FeatureScores   map[string]float64 `json:"feature_scores"`
	BestMatch       string             `json:"best_match,omitempty"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationSet struct {
	Recommendations []RecommendationResult
	CacheHit        bool
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type BatchSearchResult struct {
	SearchID        int64                  `json:"search_id"`
	Recommendations []RecommendationResult `json:"recommendations,omitempty"`
	Status          string                 `json:"status"`
	Error           string                 `json:"error,omitempty"`
	Message         string                 `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page          int                 `json:"page"`
	Limit         int                 `json:"limit"`
	TotalSearches int                 `json:"total_searches"`
	Results       []BatchSearchResult `json:"results"`
	Summary       BatchSummary        `json:"summary"`
	Metadata      BatchMeta           `json:"metadata"`
}
