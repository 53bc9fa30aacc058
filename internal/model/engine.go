// Package model is the restaurant similarity engine: feature extraction,
// vectorization, pairwise scoring and ranking.
package model

import (
	"context"
	"fmt"
	"math"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/actuallystonmai/restaurant-recommender/internal/logging"
	"github.com/rs/zerolog"
)

const DefaultTopK = 10

// Engine is safe for concurrent use. The encoder is shared; every call builds
// and discards its own feature bundles.
type Engine struct {
	encoder Encoder
	opts    Options
	log     zerolog.Logger
}

// NewEngine validates opts. A nil encoder is allowed and makes every text
// feature score neutral.
func NewEngine(enc Encoder, opts Options) (*Engine, error) {
	if opts.TextMode == "" {
		opts.TextMode = TextSeparate
	}
	if opts.MenuStrategy == "" {
		opts.MenuStrategy = ListEmbedding
	}
	if opts.TagsStrategy == "" {
		opts.TagsStrategy = ListEmbedding
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	return &Engine{
		encoder: enc,
		opts:    opts,
		log:     logging.With("engine"),
	}, nil
}

func (e *Engine) Options() Options {
	return e.opts
}

// Recommend ranks candidates by their best similarity to any reference.
// Empty inputs or topK <= 0 give an empty list. The only errors returned come
// from ctx.
func (e *Engine) Recommend(ctx context.Context, refs, cands []domain.RestaurantRecord, topK int) ([]domain.RecommendationResult, error) {
	if len(refs) == 0 || len(cands) == 0 || topK <= 0 {
		e.log.Debug().Int("references", len(refs)).Int("candidates", len(cands)).Int("top_k", topK).Msg("nothing to rank")
		return []domain.RecommendationResult{}, nil
	}

	refFeatures, candFeatures, err := e.Features(ctx, refs, cands)
	if err != nil {
		return nil, err
	}

	matrix := Similarity(refFeatures, candFeatures, e.opts.Weights)
	best := BestMatches(matrix, refFeatures, candFeatures)
	ranked := Rank(best, refFeatures, candFeatures, topK)

	e.log.Info().
		Int("references", len(refs)).
		Int("candidates", len(cands)).
		Int("filtered", len(best)-len(ranked)).
		Int("returned", len(ranked)).
		Msg("generated recommendations")

	results := make([]domain.RecommendationResult, len(ranked))
	for i, rec := range ranked {
		c := cands[rec.CandidateIndex]
		scores := rec.Features.Map()
		for k, v := range scores {
			scores[k] = round3(v)
		}
		results[i] = domain.RecommendationResult{
			RestaurantID:    c.ID,
			Name:            c.Name,
			Address:         c.Address,
			POIID:           c.POIID,
			SimilarityScore: round3(rec.Score),
			FeatureScores:   scores,
			BestMatch:       rec.ReferenceName,
		}
	}
	return results, nil
}

// Features extracts and vectorizes both sets in one batch.
func (e *Engine) Features(ctx context.Context, refs, cands []domain.RestaurantRecord) ([]FeatureBundle, []FeatureBundle, error) {
	all := ExtractFeatures(append(append(make([]domain.RestaurantRecord, 0, len(refs)+len(cands)), refs...), cands...))

	v := &vectorizer{enc: e.encoder, opts: e.opts, log: e.log}
	if err := v.vectorize(ctx, all); err != nil {
		return nil, nil, err
	}
	return all[:len(refs):len(refs)], all[len(refs):], nil
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
