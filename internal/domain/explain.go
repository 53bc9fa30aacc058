package domain

type FeatureMethod struct {
	Method      string  `json:"method"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

type Methodology struct {
	Description string                   `json:"description"`
	Features    map[string]FeatureMethod `json:"features"`
	Model       string                   `json:"model"`
}

type DataStats struct {
	ReferenceRestaurants int `json:"user_restaurants"`
	CityRestaurants      int `json:"city_restaurants"`
	TotalComparisons     int `json:"total_comparisons"`
}

type Scoring struct {
	Range       string `json:"range"`
	Calculation string `json:"calculation"`
	Ranking     string `json:"ranking"`
}

type Explanation struct {
	Methodology Methodology `json:"methodology"`
	DataStats   DataStats   `json:"data_stats"`
	Scoring     Scoring     `json:"scoring"`
}

type RestaurantDebug struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Cuisine           string   `json:"cuisine"`
	PriceLevel        *int     `json:"price_level"`
	DescriptionLength int      `json:"description_length"`
	ReviewLength      int      `json:"review_length"`
	MenuItems         int      `json:"menu_items"`
	Tags              int      `json:"tags"`
	HasEnrichment     bool     `json:"has_enrichment"`
	Description       string   `json:"description,omitempty"`
	ReviewSummary     string   `json:"review_summary,omitempty"`
	MenuHighlights    []string `json:"menu_highlights,omitempty"`
	TagList           []string `json:"tag_list,omitempty"`
}

type CitySummary struct {
	TotalCount     int               `json:"total_count"`
	WithEnrichment int               `json:"with_enrichment"`
	Sample         []RestaurantDebug `json:"sample_restaurants"`
}

type DebugInfo struct {
	ReferenceRestaurants []RestaurantDebug `json:"user_restaurants"`
	CityRestaurants      *CitySummary      `json:"city_restaurants,omitempty"`
	SpecificRestaurant   *RestaurantDebug  `json:"specific_restaurant,omitempty"`
}
