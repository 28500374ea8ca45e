package trend

import (
	"strings"
	"unicode"

	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/source"
)

// Deduper decides whether an incoming candidate repeats a recently stored
// trend. Near-identical headlines get republished across outlets with minor
// wording changes, so an exact (title, source) check alone is not enough; a
// fuzzy word-overlap pass catches the rewrites.
type Deduper struct {
	threshold float64
}

// NewDeduper creates a deduper with the given similarity threshold (0-1).
func NewDeduper(threshold float64) *Deduper {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.75
	}
	return &Deduper{threshold: threshold}
}

// IsDuplicate checks a candidate against a snapshot of recent trends. The
// snapshot is taken once per scan cycle so a cycle never dedups against
// writes from a concurrently running cycle.
func (d *Deduper) IsDuplicate(title string, st source.SourceType, recent []store.Trend) bool {
	words := SignificantWords(title)

	for i := range recent {
		if recent[i].Title == title && recent[i].Source == string(st) {
			return true
		}
		if TokenSimilarity(words, SignificantWords(recent[i].Title)) > d.threshold {
			return true
		}
	}
	return false
}

// SignificantWords extracts the comparison token set from a title: case
// folded, split on punctuation, words longer than two characters.
func SignificantWords(title string) []string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var keep []string
	for _, w := range words {
		if len(w) > 2 {
			keep = append(keep, w)
		}
	}
	return keep
}

// TitleSimilarity returns the Jaccard index of two titles' significant-word
// sets. Symmetric by construction.
func TitleSimilarity(a, b string) float64 {
	return TokenSimilarity(SignificantWords(a), SignificantWords(b))
}

// TokenSimilarity returns shared words over the union of both word sets.
func TokenSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[w] = true
	}

	shared := 0
	for w := range setA {
		if setB[w] {
			shared++
		}
	}

	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
