package handler

import (
	"sort"
	"strings"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
)

var scoreBands = []struct {
	threshold float64
	label     string
}{
	{0.8, "Excellent match"},
	{0.7, "Very good match"},
	{0.5, "Good match"},
	{0.0, "Moderate match"},
}

// Features worth naming when they score above strongFeatureScore. Description
// and tags share a label.
var featureLabels = map[string]string{
	domain.FeatureCuisine:     "cuisine",
	domain.FeatureDescription: "atmosphere and style",
	domain.FeatureTags:        "atmosphere and style",
	domain.FeatureMenu:        "menu offerings",
}

const strongFeatureScore = 0.8

// explain renders e.g. "Excellent match: similar cuisine, menu offerings".
func explain(rec domain.RecommendationResult) string {
	var parts []string
	for _, band := range scoreBands {
		if rec.SimilarityScore > band.threshold {
			parts = append(parts, band.label)
			break
		}
	}

	seen := map[string]bool{}
	var labels []string
	for feature, score := range rec.FeatureScores {
		label, ok := featureLabels[feature]
		if !ok || score <= strongFeatureScore || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	if len(labels) > 0 {
		sort.Strings(labels)
		parts = append(parts, strings.Join(labels, ", "))
	}

	return strings.Join(parts, ": similar ")
}

func explainAll(recs []domain.RecommendationResult) []ExplainedRecommendation {
	out := make([]ExplainedRecommendation, len(recs))
	for i, rec := range recs {
		out[i] = ExplainedRecommendation{RecommendationResult: rec, Explanation: explain(rec)}
	}
	return out
}
