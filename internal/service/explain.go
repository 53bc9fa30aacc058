package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/actuallystonmai/restaurant-recommender/internal/model"
)

const debugSampleSize = 5

// Explain describes how recommendations for a search are computed.
func (s *Service) Explain(ctx context.Context, searchID int64) (*domain.Explanation, error) {
	if _, err := s.store.GetSearch(ctx, searchID); err != nil {
		if errors.Is(err, domain.ErrSearchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch search: %w", err)
	}

	refCount, cityCount, err := s.store.CountRestaurants(ctx, searchID)
	if err != nil {
		return nil, err
	}

	opts := s.engine.Options()
	w := opts.Weights
	listMethod := func(st model.ListStrategy) string {
		if st == model.ListTFIDF {
			return "TF-IDF exact-term vectors + cosine similarity"
		}
		return "Mean of item embeddings + cosine similarity"
	}
	textMethod := "Sentence embeddings + cosine similarity"
	if opts.TextMode == model.TextCombined {
		textMethod = "Combined description and review embedding + cosine similarity"
	}

	return &domain.Explanation{
		Methodology: domain.Methodology{
			Description: "Multi-feature similarity scoring",
			Features: map[string]domain.FeatureMethod{
				domain.FeatureCuisine: {
					Method:      "Cuisine embedding + cosine similarity",
					Weight:      w.Cuisine,
					Description: "Matches restaurants with similar cuisine types",
				},
				domain.FeaturePrice: {
					Method:      "Proximity scoring on 1-5 scale",
					Weight:      w.Price,
					Description: "Finds restaurants in similar price ranges",
				},
				domain.FeatureDescription: {
					Method:      textMethod,
					Weight:      w.Description,
					Description: "Compares restaurant descriptions for atmosphere and style",
				},
				domain.FeatureReview: {
					Method:      textMethod,
					Weight:      w.Review,
					Description: "Compares what reviewers say",
				},
				domain.FeatureMenu: {
					Method:      listMethod(opts.MenuStrategy),
					Weight:      w.Menu,
					Description: "Compares specific dishes",
				},
				domain.FeatureTags: {
					Method:      listMethod(opts.TagsStrategy),
					Weight:      w.Tags,
					Description: "Compares restaurant characteristics",
				},
			},
			Model: s.modelID,
		},
		DataStats: domain.DataStats{
			ReferenceRestaurants: refCount,
			CityRestaurants:      cityCount,
			TotalComparisons:     refCount * cityCount,
		},
		Scoring: domain.Scoring{
			Range:       "0.0 to 1.0 (higher is better)",
			Calculation: "Weighted sum of individual feature similarities",
			Ranking:     fmt.Sprintf("Top %d highest scoring city restaurants", s.defaultTopK),
		},
	}, nil
}

// Debug reports the features extracted for a search. With restaurantID set
// only that city restaurant is detailed.
func (s *Service) Debug(ctx context.Context, searchID int64, restaurantID *int64) (*domain.DebugInfo, error) {
	if _, err := s.store.GetSearch(ctx, searchID); err != nil {
		if errors.Is(err, domain.ErrSearchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch search: %w", err)
	}
	refs, err := s.store.GetReferenceRestaurants(ctx, searchID)
	if err != nil {
		return nil, fmt.Errorf("fetch reference restaurants: %w", err)
	}
	cands, err := s.store.GetCityRestaurants(ctx, searchID)
	if err != nil {
		return nil, fmt.Errorf("fetch city restaurants: %w", err)
	}

	info := &domain.DebugInfo{ReferenceRestaurants: []domain.RestaurantDebug{}}
	for _, b := range model.ExtractFeatures(refs) {
		info.ReferenceRestaurants = append(info.ReferenceRestaurants, summarize(b))
	}

	cityFeatures := model.ExtractFeatures(cands)
	if restaurantID != nil {
		for _, b := range cityFeatures {
			if b.ID == *restaurantID {
				d := detail(b)
				info.SpecificRestaurant = &d
				break
			}
		}
		return info, nil
	}

	summary := &domain.CitySummary{TotalCount: len(cityFeatures), Sample: []domain.RestaurantDebug{}}
	for i, b := range cityFeatures {
		d := summarize(b)
		if d.HasEnrichment {
			summary.WithEnrichment++
		}
		if i < debugSampleSize {
			summary.Sample = append(summary.Sample, d)
		}
	}
	info.CityRestaurants = summary
	return info, nil
}

func summarize(b model.FeatureBundle) domain.RestaurantDebug {
	return domain.RestaurantDebug{
		ID:                b.ID,
		Name:              b.Name,
		Cuisine:           b.Cuisine,
		PriceLevel:        b.PriceLevel,
		DescriptionLength: len(b.Description),
		ReviewLength:      len(b.ReviewSummary),
		MenuItems:         len(b.MenuHighlights),
		Tags:              len(b.Tags),
		HasEnrichment:     b.Description != "" || b.ReviewSummary != "",
	}
}

func detail(b model.FeatureBundle) domain.RestaurantDebug {
	d := summarize(b)
	d.Description = truncate(b.Description, 200)
	d.ReviewSummary = truncate(b.ReviewSummary, 200)
	d.MenuHighlights = b.MenuHighlights
	d.TagList = b.Tags
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
