package model

import (
	"context"
	"errors"
	"strings"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/rs/zerolog"
)

// Encoder turns texts into fixed-length vectors. Implementations are shared
// by concurrent calls and must not keep per-call state.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

type vectorizer struct {
	enc  Encoder
	opts Options
	log  zerolog.Logger
}

// vectorize fills every vector field of bundles. Reference and candidate
// bundles must be passed together so each dimension uses one encoding.
// Only context errors are returned; encoder failures degrade to zero vectors.
func (v *vectorizer) vectorize(ctx context.Context, bundles []FeatureBundle) error {
	n := len(bundles)

	cuisine := make([]string, n)
	for i := range bundles {
		cuisine[i] = bundles[i].cuisineText()
	}
	vecs, err := v.encodeDimension(ctx, domain.FeatureCuisine, cuisine)
	if err != nil {
		return err
	}
	for i := range bundles {
		bundles[i].CuisineVector = vecs[i]
	}

	if err := v.vectorizeText(ctx, bundles); err != nil {
		return err
	}

	menu := make([][]string, n)
	tags := make([][]string, n)
	for i := range bundles {
		menu[i] = bundles[i].menuItems()
		tags[i] = bundles[i].tagItems()
	}
	if vecs, err = v.vectorizeLists(ctx, domain.FeatureMenu, menu, v.opts.MenuStrategy, menuTFIDF); err != nil {
		return err
	}
	for i := range bundles {
		bundles[i].MenuVector = vecs[i]
	}
	if vecs, err = v.vectorizeLists(ctx, domain.FeatureTags, tags, v.opts.TagsStrategy, tagsTFIDF); err != nil {
		return err
	}
	for i := range bundles {
		bundles[i].TagsVector = vecs[i]
	}
	return nil
}

func (v *vectorizer) vectorizeText(ctx context.Context, bundles []FeatureBundle) error {
	n := len(bundles)
	if v.opts.TextMode == TextCombined {
		texts := make([]string, n)
		for i := range bundles {
			texts[i] = bundles[i].combinedText()
		}
		vecs, err := v.encodeDimension(ctx, domain.FeatureDescription, texts)
		if err != nil {
			return err
		}
		for i := range bundles {
			bundles[i].DescriptionVector = vecs[i]
			bundles[i].ReviewVector = vecs[i]
		}
		return nil
	}

	desc := make([]string, n)
	review := make([]string, n)
	for i := range bundles {
		desc[i] = bundles[i].descriptionText()
		review[i] = bundles[i].reviewText()
	}
	dvecs, err := v.encodeDimension(ctx, domain.FeatureDescription, desc)
	if err != nil {
		return err
	}
	rvecs, err := v.encodeDimension(ctx, domain.FeatureReview, review)
	if err != nil {
		return err
	}
	for i := range bundles {
		bundles[i].DescriptionVector = dvecs[i]
		bundles[i].ReviewVector = rvecs[i]
	}
	return nil
}

// vectorizeLists embeds one list of items per restaurant.
func (v *vectorizer) vectorizeLists(ctx context.Context, feature string, lists [][]string, strategy ListStrategy, cfg tfidfConfig) ([][]float32, error) {
	if strategy == ListTFIDF {
		docs := make([]string, len(lists))
		for i, items := range lists {
			docs[i] = strings.Join(items, " ")
		}
		tv := fitTFIDF(docs, cfg)
		out := make([][]float32, len(docs))
		for i, doc := range docs {
			out[i] = tv.transform(doc, cfg.maxNgram)
		}
		return out, nil
	}

	var flat []string
	for _, items := range lists {
		flat = append(flat, items...)
	}
	itemVecs, err := v.encodeDimension(ctx, feature, flat)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(lists))
	pos := 0
	for i, items := range lists {
		out[i] = meanVector(itemVecs[pos:pos+len(items)], v.dimension())
		pos += len(items)
	}
	return out, nil
}

// encodeDimension encodes texts for one feature, sending each distinct text
// once. On encoder failure every vector is a zero vector of the encoder's
// dimension.
func (v *vectorizer) encodeDimension(ctx context.Context, feature string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	if v.enc == nil {
		v.fail(feature, domain.ErrEncoderUnavailable)
		return v.zeros(len(texts)), nil
	}

	index := make(map[string]int, len(texts))
	var unique []string
	for _, t := range texts {
		if _, ok := index[t]; !ok {
			index[t] = len(unique)
			unique = append(unique, t)
		}
	}

	vecs, err := v.enc.Encode(ctx, unique)
	if err == nil && len(vecs) != len(unique) {
		err = errors.New("encoder returned wrong number of vectors")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		v.fail(feature, err)
		return v.zeros(len(texts)), nil
	}

	for i, t := range texts {
		out[i] = vecs[index[t]]
	}
	return out, nil
}

func (v *vectorizer) fail(feature string, err error) {
	encErr := &EncoderError{Feature: feature, Err: err}
	v.log.Warn().Err(err).Str("feature", feature).Msg("encoder failed, using zero vectors")
	if v.opts.OnEncoderFailure != nil {
		v.opts.OnEncoderFailure(encErr)
	}
}

func (v *vectorizer) dimension() int {
	if v.enc == nil {
		return 0
	}
	return v.enc.Dimension()
}

func (v *vectorizer) zeros(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, v.dimension())
	}
	return out
}

// meanVector averages vecs element-wise. Vectors whose length differs from
// the first one are skipped.
func meanVector(vecs [][]float32, dim int) []float32 {
	if len(vecs) == 0 {
		return make([]float32, dim)
	}
	out := make([]float32, len(vecs[0]))
	count := 0
	for _, vec := range vecs {
		if len(vec) != len(out) {
			continue
		}
		for j, x := range vec {
			out[j] += x
		}
		count++
	}
	for j := range out {
		out[j] /= float32(count)
	}
	return out
}
