package model

import (
	"math"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
)

// FeatureScores holds one similarity in [0,1] per feature.
type FeatureScores struct {
	Cuisine     float64
	Price       float64
	Description float64
	Review      float64
	Menu        float64
	Tags        float64
}

func (f FeatureScores) Map() map[string]float64 {
	return map[string]float64{
		domain.FeatureCuisine:     f.Cuisine,
		domain.FeaturePrice:       f.Price,
		domain.FeatureDescription: f.Description,
		domain.FeatureReview:      f.Review,
		domain.FeatureMenu:        f.Menu,
		domain.FeatureTags:        f.Tags,
	}
}

// Matrix is the pairwise result of comparing M candidates against N
// references. Scores[i][j] and Features[i][j] belong to candidate i and
// reference j.
type Matrix struct {
	Scores   [][]float64
	Features [][]FeatureScores
}

// Similarity scores every candidate against every reference.
func Similarity(refs, cands []FeatureBundle, w Weights) Matrix {
	m := Matrix{
		Scores:   make([][]float64, len(cands)),
		Features: make([][]FeatureScores, len(cands)),
	}
	for i := range cands {
		m.Scores[i] = make([]float64, len(refs))
		m.Features[i] = make([]FeatureScores, len(refs))
		for j := range refs {
			fs := pairScores(&cands[i], &refs[j])
			m.Features[i][j] = fs
			m.Scores[i][j] = w.Aggregate(fs)
		}
	}
	return m
}

func pairScores(a, b *FeatureBundle) FeatureScores {
	return FeatureScores{
		Cuisine:     embeddingSimilarity(a.CuisineVector, b.CuisineVector),
		Price:       priceSimilarity(a, b),
		Description: embeddingSimilarity(a.DescriptionVector, b.DescriptionVector),
		Review:      embeddingSimilarity(a.ReviewVector, b.ReviewVector),
		Menu:        embeddingSimilarity(a.MenuVector, b.MenuVector),
		Tags:        embeddingSimilarity(a.TagsVector, b.TagsVector),
	}
}

// embeddingSimilarity maps cosine similarity from [-1,1] onto [0,1]. Missing,
// zero-norm or mismatched vectors score neutral.
func embeddingSimilarity(a, b []float32) float64 {
	cos, ok := cosine(a, b)
	if !ok {
		return neutralScore
	}
	return clamp01((cos + 1) / 2)
}

func priceSimilarity(a, b *FeatureBundle) float64 {
	if !a.HasPrice || !b.HasPrice {
		return neutralScore
	}
	return math.Max(0, 1-math.Abs(a.PriceScore-b.PriceScore))
}

func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(cos) {
		return 0, false
	}
	return cos, true
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
