// Package embedding provides text encoders for the recommendation engine.
//
// OllamaEncoder talks to a local Ollama server. HashingEncoder is a
// deterministic in-process fallback that needs no model download.
// CachedEncoder memoizes either of them.
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultHashingDim = 384
	trigramWeight     = 0.5
)

// HashingEncoder embeds text with signed feature hashing over word tokens and
// character trigrams. Vectors are L2-normalized; empty text maps to a zero
// vector.
type HashingEncoder struct {
	dim int
}

func NewHashingEncoder(dim int) *HashingEncoder {
	if dim <= 0 {
		dim = defaultHashingDim
	}
	return &HashingEncoder{dim: dim}
}

func (h *HashingEncoder) Dimension() int  { return h.dim }
func (h *HashingEncoder) ModelID() string { return "hashing" }

// Encode embeds every text. It never fails unless ctx is done.
func (h *HashingEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h *HashingEncoder) embed(text string) []float32 {
	vec := make([]float32, h.dim)
	for _, tok := range Tokenize(text) {
		h.add(vec, "w:"+tok, 1)
		padded := " " + tok + " "
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			h.add(vec, "c:"+string(runes[i:i+3]), trigramWeight)
		}
	}
	normalize(vec)
	return vec
}

func (h *HashingEncoder) add(vec []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// Tokenize lower-cases NFKC-normalized text and splits it on anything that is
// not a letter or digit.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	n := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= n
	}
}
