package domain

// RestaurantRecord is a restaurant as supplied by the data source. Reference
// restaurants (liked by the user) and city restaurants (candidates) share it.
//
// MenuHighlights and Tags hold decoded lists. When a record comes straight
// from storage they may be nil and MenuJSON/TagsJSON carry the stored text.
type RestaurantRecord struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name" validate:"required"`
	Address        string   `json:"address" validate:"required"`
	POIID          string   `json:"tomtom_poi_id,omitempty"`
	Cuisine        string   `json:"cuisine,omitempty"`
	PriceLevel     *int     `json:"price_level,omitempty"`
	Description    string   `json:"description,omitempty"`
	ReviewSummary  string   `json:"review_summary,omitempty"`
	MenuHighlights []string `json:"menu_highlights,omitempty"`
	Tags           []string `json:"tags,omitempty"`

	MenuJSON string `json:"-"`
	TagsJSON string `json:"-"`
}

type Search struct {
	ID           int64   `json:"id"`
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Population   int     `json:"population"`
}
