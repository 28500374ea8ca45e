package trend

import (
	"github.com/DanielAquino2003/TrendWriter/internal/store"
)

// SelectorConfig gates which stored trends are eligible for processing.
// The processing threshold is distinct from, and higher than, the minimum
// score required to persist a trend in the first place.
type SelectorConfig struct {
	ProcessingThreshold int `yaml:"processing_threshold"`
	MaxErrorCount       int `yaml:"max_error_count"`
}

// DefaultSelectorConfig returns the canonical eligibility gate.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		ProcessingThreshold: 300,
		MaxErrorCount:       3,
	}
}

// Eligible reports whether a trend may be selected for article generation.
// Errored trends stay retryable until they hit the error cap.
func Eligible(t store.Trend, cfg SelectorConfig) bool {
	if t.Status == store.StatusProcessed {
		return false
	}
	if t.ViralScore <= cfg.ProcessingThreshold {
		return false
	}
	if t.Status == store.StatusError && t.ErrorCount >= cfg.MaxErrorCount {
		return false
	}
	return true
}

// SelectBest deterministically picks the single best eligible trend by
// viral score, then normalized score, then creation time (newest wins).
// Returns nil when nothing is eligible; that is a normal, silent outcome.
func SelectBest(trends []store.Trend, cfg SelectorConfig) *store.Trend {
	var best *store.Trend
	for i := range trends {
		if !Eligible(trends[i], cfg) {
			continue
		}
		if best == nil || ranksAbove(trends[i], *best) {
			best = &trends[i]
		}
	}
	return best
}

// ranksAbove is the strict lexicographic ordering used by SelectBest. On a
// full tie the earlier-seen trend is kept, so selection is stable.
func ranksAbove(a, b store.Trend) bool {
	if a.ViralScore != b.ViralScore {
		return a.ViralScore > b.ViralScore
	}
	if a.NormalizedScore != b.NormalizedScore {
		return a.NormalizedScore > b.NormalizedScore
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Stats is a read-only aggregate over a trend set.
type Stats struct {
	Total          int            `json:"total"`
	Processed      int            `json:"processed"`
	Pending        int            `json:"pending"`
	Errored        int            `json:"errored"`
	Eligible       int            `json:"eligible"`
	ByTier         map[string]int `json:"by_tier"`
	ProcessingRate int            `json:"processing_rate"`
}

// ComputeStats derives counts by state and quality tier. Pure; no side
// effects on the input.
func ComputeStats(trends []store.Trend, cfg SelectorConfig) Stats {
	stats := Stats{ByTier: make(map[string]int)}

	for _, t := range trends {
		stats.Total++
		stats.ByTier[t.QualityTier]++

		switch t.Status {
		case store.StatusProcessed:
			stats.Processed++
		case store.StatusError:
			stats.Errored++
		default:
			stats.Pending++
		}

		if Eligible(t, cfg) {
			stats.Eligible++
		}
	}

	if stats.Total > 0 {
		stats.ProcessingRate = stats.Processed * 100 / stats.Total
	}
	return stats
}
