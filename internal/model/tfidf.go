package model

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

var englishStopWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {}, "and": {}, "any": {},
	"are": {}, "as": {}, "at": {}, "be": {}, "been": {}, "but": {}, "by": {}, "can": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "more": {}, "most": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "so": {}, "some": {}, "such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {}, "very": {}, "was": {},
	"we": {}, "were": {}, "which": {}, "while": {}, "with": {}, "you": {}, "your": {},
}

type tfidfConfig struct {
	maxFeatures int
	maxNgram    int
	maxDF       float64
}

var (
	menuTFIDF = tfidfConfig{maxFeatures: 300, maxNgram: 5, maxDF: 0.95}
	tagsTFIDF = tfidfConfig{maxFeatures: 150, maxNgram: 3, maxDF: 0.9}
)

// tfidfVectorizer is fitted on one batch and discarded with it; the
// vocabulary is never shared between calls.
type tfidfVectorizer struct {
	vocab map[string]int
	idf   []float64
}

// fitTFIDF builds the vocabulary from docs. Terms present in more than maxDF
// of the documents are dropped unless that would leave nothing. The
// vocabulary keeps the maxFeatures most frequent terms, ties by term.
func fitTFIDF(docs []string, cfg tfidfConfig) *tfidfVectorizer {
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range ngrams(tfidfTokens(doc), cfg.maxNgram) {
			tf[term]++
			if !seen[term] {
				df[term]++
				seen[term] = true
			}
		}
	}

	n := float64(len(docs))
	terms := make([]string, 0, len(df))
	for term, count := range df {
		if float64(count) <= cfg.maxDF*n {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		for term := range df {
			terms = append(terms, term)
		}
	}

	sort.Slice(terms, func(i, j int) bool {
		if tf[terms[i]] != tf[terms[j]] {
			return tf[terms[i]] > tf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if cfg.maxFeatures > 0 && len(terms) > cfg.maxFeatures {
		terms = terms[:cfg.maxFeatures]
	}
	sort.Strings(terms)

	v := &tfidfVectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// transform returns the L2-normalized tf-idf vector of doc.
func (v *tfidfVectorizer) transform(doc string, maxNgram int) []float32 {
	vec := make([]float64, len(v.idf))
	for _, term := range ngrams(tfidfTokens(doc), maxNgram) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		out[i] = float32(vec[i] / norm)
	}
	return out
}

// tfidfTokens keeps runs of letters and hyphens of length two or more,
// lower-cased, without English stop words.
func tfidfTokens(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func ngrams(tokens []string, maxN int) []string {
	if maxN < 1 {
		maxN = 1
	}
	var out []string
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
