package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
)

const weightTolerance = 1e-6

// Weights are the shares of each feature in the aggregate score. They must
// be non-negative and sum to 1.
type Weights struct {
	Cuisine     float64 `json:"cuisine"`
	Price       float64 `json:"price"`
	Description float64 `json:"description"`
	Review      float64 `json:"review"`
	Menu        float64 `json:"menu"`
	Tags        float64 `json:"tags"`
}

func DefaultWeights() Weights {
	return Weights{
		Cuisine:     0.18,
		Price:       0.15,
		Description: 0.20,
		Review:      0.12,
		Menu:        0.20,
		Tags:        0.15,
	}
}

func (w Weights) Validate() error {
	sum := 0.0
	m := w.Map()
	for _, name := range domain.FeatureNames {
		v := m[name]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s must be a non-negative number, got %v", name, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}

func (w Weights) Map() map[string]float64 {
	return map[string]float64{
		domain.FeatureCuisine:     w.Cuisine,
		domain.FeaturePrice:       w.Price,
		domain.FeatureDescription: w.Description,
		domain.FeatureReview:      w.Review,
		domain.FeatureMenu:        w.Menu,
		domain.FeatureTags:        w.Tags,
	}
}

// Aggregate is the weighted sum of per-feature similarities.
func (w Weights) Aggregate(s FeatureScores) float64 {
	return s.Cuisine*w.Cuisine +
		s.Price*w.Price +
		s.Description*w.Description +
		s.Review*w.Review +
		s.Menu*w.Menu +
		s.Tags*w.Tags
}

// TextMode controls whether description and review summary are embedded
// separately or as one text.
type TextMode string

const (
	TextSeparate TextMode = "separate"
	TextCombined TextMode = "combined"
)

// ListStrategy controls how menu highlights and tags become vectors.
type ListStrategy string

const (
	// ListEmbedding averages the embeddings of the individual items.
	ListEmbedding ListStrategy = "embedding"
	// ListTFIDF fits exact-term tf-idf vectors on the current batch.
	ListTFIDF ListStrategy = "tfidf"
)

func ParseTextMode(s string) (TextMode, error) {
	switch TextMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TextSeparate:
		return TextSeparate, nil
	case TextCombined:
		return TextCombined, nil
	}
	return "", fmt.Errorf("unknown text mode %q", s)
}

func ParseListStrategy(s string) (ListStrategy, error) {
	switch ListStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ListEmbedding:
		return ListEmbedding, nil
	case ListTFIDF:
		return ListTFIDF, nil
	}
	return "", fmt.Errorf("unknown list strategy %q", s)
}

type Options struct {
	Weights      Weights
	TextMode     TextMode
	MenuStrategy ListStrategy
	TagsStrategy ListStrategy

	// OnEncoderFailure is called once per feature whose vectors fell back to
	// zeros. Optional.
	OnEncoderFailure func(err *EncoderError)
}

func DefaultOptions() Options {
	return Options{
		Weights:      DefaultWeights(),
		TextMode:     TextSeparate,
		MenuStrategy: ListEmbedding,
		TagsStrategy: ListEmbedding,
	}
}

func (o Options) validate() error {
	if err := o.Weights.Validate(); err != nil {
		return err
	}
	if _, err := ParseTextMode(string(o.TextMode)); err != nil {
		return err
	}
	if _, err := ParseListStrategy(string(o.MenuStrategy)); err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	if _, err := ParseListStrategy(string(o.TagsStrategy)); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	return nil
}

// EncoderError records that a feature dimension could not be embedded.
type EncoderError struct {
	Feature string
	Err     error
}

func (e *EncoderError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Feature, e.Err)
}

func (e *EncoderError) Unwrap() error { return e.Err }

func (e *EncoderError) Is(target error) bool {
	return target == domain.ErrEncoderUnavailable
}

func IsEncoderError(err error) bool {
	var target *EncoderError
	return errors.As(err, &target)
}
