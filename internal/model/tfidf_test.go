package model

import (
	"math"
	"testing"
)

func TestTFIDFTokens(t *testing.T) {
	got := tfidfTokens("The Pad-Thai and 2 spring rolls, a must!")
	want := []string{"pad-thai", "spring", "rolls", "must"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNgrams(t *testing.T) {
	got := ngrams([]string{"a", "b", "c"}, 2)
	want := []string{"a", "b", "c", "a b", "b c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ngram %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFitTFIDF(t *testing.T) {
	docs := []string{"garlic knots pizza", "pizza pasta", "sushi"}
	cfg := tfidfConfig{maxFeatures: 100, maxNgram: 1, maxDF: 0.95}
	v := fitTFIDF(docs, cfg)

	if len(v.vocab) != 5 {
		t.Errorf("expected 5 terms, got %d", len(v.vocab))
	}
	// shared terms get a lower idf
	if v.idf[v.vocab["pizza"]] >= v.idf[v.vocab["sushi"]] {
		t.Error("term in more documents should have lower idf")
	}

	vec := v.transform("pizza", cfg.maxNgram)
	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("expected unit vector, got norm² %f", norm)
	}

	if zero := v.transform("unseen words", cfg.maxNgram); len(zero) != len(v.idf) {
		t.Errorf("expected vocabulary-sized vector, got %d", len(zero))
	}
}

func TestFitTFIDF_MaxFeaturesAndMaxDF(t *testing.T) {
	docs := []string{"tacos tacos burrito", "tacos nachos", "tacos churros"}
	v := fitTFIDF(docs, tfidfConfig{maxFeatures: 2, maxNgram: 1, maxDF: 0.9})

	if _, ok := v.vocab["tacos"]; ok {
		t.Error("term in every document should be dropped by maxDF")
	}
	if len(v.vocab) != 2 {
		t.Errorf("expected vocabulary capped at 2, got %d", len(v.vocab))
	}

	// when maxDF would empty the vocabulary every term is kept
	all := fitTFIDF([]string{"food", "food"}, tfidfConfig{maxFeatures: 10, maxNgram: 1, maxDF: 0.9})
	if _, ok := all.vocab["food"]; !ok {
		t.Error("expected fallback to full vocabulary")
	}
}
