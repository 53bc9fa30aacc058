package model

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SimilarityRecord is a candidate's best score and the reference that
// produced it.
type SimilarityRecord struct {
	CandidateIndex int
	CandidateID    int64
	Score          float64
	Features       FeatureScores
	ReferenceIndex int
	ReferenceName  string
}

// BestMatches reduces each matrix row to its maximum. Ties go to the first
// reference.
func BestMatches(m Matrix, refs, cands []FeatureBundle) []SimilarityRecord {
	out := make([]SimilarityRecord, 0, len(cands))
	for i := range cands {
		row := m.Scores[i]
		if len(row) == 0 {
			continue
		}
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		out = append(out, SimilarityRecord{
			CandidateIndex: i,
			CandidateID:    cands[i].ID,
			Score:          row[best],
			Features:       m.Features[i][best],
			ReferenceIndex: best,
			ReferenceName:  refs[best].Name,
		})
	}
	return out
}

// Rank drops candidates named like a reference, then later candidates
// repeating an earlier name (input order), sorts by score descending and
// keeps topK. Equal scores keep input order. topK <= 0 yields nothing.
func Rank(records []SimilarityRecord, refs, cands []FeatureBundle, topK int) []SimilarityRecord {
	if topK <= 0 {
		return []SimilarityRecord{}
	}

	refNames := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		refNames[NormalizeName(r.Name)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(records))
	kept := make([]SimilarityRecord, 0, len(records))
	for _, rec := range records {
		name := NormalizeName(cands[rec.CandidateIndex].Name)
		if _, ok := refNames[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		kept = append(kept, rec)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}

// NormalizeName is the identity used for duplicate detection: NFKC,
// lower-cased, trimmed, inner whitespace collapsed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(name))), " ")
}
