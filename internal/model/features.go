package model

import (
	"fmt"
	"strings"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/actuallystonmai/restaurant-recommender/internal/logging"
	"github.com/goccy/go-json"
)

const (
	minPriceLevel = 1
	maxPriceLevel = 5

	neutralScore = 0.5

	fallbackCuisine = "restaurant"
	fallbackReview  = "customer reviews"
	fallbackMenu    = "food"
	fallbackTags    = "restaurant"
)

// FeatureBundle is the per-restaurant working set of one recommendation call.
// Raw fields are copied from the record; vectors are filled by the vectorizer.
type FeatureBundle struct {
	ID             int64
	Name           string
	Cuisine        string
	PriceLevel     *int
	Description    string
	ReviewSummary  string
	MenuHighlights []string
	Tags           []string

	PriceScore float64
	HasPrice   bool

	CuisineVector     []float32
	DescriptionVector []float32
	ReviewVector      []float32
	MenuVector        []float32
	TagsVector        []float32
}

// ExtractFeatures builds one bundle per record in input order. It never
// fails: malformed stored lists are logged and treated as empty.
func ExtractFeatures(records []domain.RestaurantRecord) []FeatureBundle {
	logger := logging.With("features")
	out := make([]FeatureBundle, len(records))

	for i, r := range records {
		menu := r.MenuHighlights
		if menu == nil && r.MenuJSON != "" {
			parsed, err := ParseStringList(r.MenuJSON)
			if err != nil {
				logger.Warn().Err(err).Int64("restaurant_id", r.ID).Str("name", r.Name).Msg("malformed menu highlights, using empty list")
			}
			menu = parsed
		}
		tags := r.Tags
		if tags == nil && r.TagsJSON != "" {
			parsed, err := ParseStringList(r.TagsJSON)
			if err != nil {
				logger.Warn().Err(err).Int64("restaurant_id", r.ID).Str("name", r.Name).Msg("malformed tags, using empty list")
			}
			tags = parsed
		}

		b := FeatureBundle{
			ID:             r.ID,
			Name:           r.Name,
			Cuisine:        strings.TrimSpace(r.Cuisine),
			PriceLevel:     r.PriceLevel,
			Description:    strings.TrimSpace(r.Description),
			ReviewSummary:  strings.TrimSpace(r.ReviewSummary),
			MenuHighlights: cleanItems(menu),
			Tags:           cleanItems(tags),
		}
		b.PriceScore, b.HasPrice = priceScore(r.PriceLevel)
		out[i] = b
	}

	logger.Debug().Int("count", len(out)).Msg("extracted features")
	return out
}

// ParseStringList decodes a JSON array stored as text. Non-string elements are
// formatted with fmt. On error the result is an empty, non-nil list.
func ParseStringList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}, nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}, fmt.Errorf("decode string list: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out, nil
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.Trim(strings.TrimSpace(it), `"`)
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

// priceScore maps tier 1..5 onto [0,1]. Anything else is absent and scores
// neutral.
func priceScore(level *int) (float64, bool) {
	if level == nil || *level < minPriceLevel || *level > maxPriceLevel {
		return neutralScore, false
	}
	return float64(*level-minPriceLevel) / float64(maxPriceLevel-minPriceLevel), true
}

func (b *FeatureBundle) cuisineText() string {
	if b.Cuisine == "" {
		return fallbackCuisine
	}
	return b.Cuisine
}

func (b *FeatureBundle) descriptionText() string {
	if b.Description == "" {
		return strings.TrimSpace(b.Name + " restaurant")
	}
	return b.Description
}

func (b *FeatureBundle) reviewText() string {
	if b.ReviewSummary == "" {
		return fallbackReview
	}
	return b.ReviewSummary
}

func (b *FeatureBundle) combinedText() string {
	parts := make([]string, 0, 2)
	if b.Description != "" {
		parts = append(parts, b.Description)
	}
	if b.ReviewSummary != "" {
		parts = append(parts, b.ReviewSummary)
	}
	if len(parts) == 0 {
		return b.descriptionText()
	}
	return strings.Join(parts, " ")
}

func (b *FeatureBundle) menuItems() []string {
	if len(b.MenuHighlights) == 0 {
		return []string{fallbackMenu}
	}
	return b.MenuHighlights
}

func (b *FeatureBundle) tagItems() []string {
	if len(b.Tags) == 0 {
		return []string{fallbackTags}
	}
	return b.Tags
}
