package trend

import (
	"math"

	"github.com/DanielAquino2003/TrendWriter/pkg/source"
)

// Score bounds shared by the normalizer and the viral scorer.
const (
	MinScore = 0
	MaxScore = 1000
)

// Transfer describes how one source's raw popularity metric maps onto the
// common 0-1000 scale. Raw metrics are not comparable across feeds: an HN
// front-page story with 500 points and a dev.to post with 80 reactions should
// land in roughly the same competitive range, so each source gets its own
// compression function.
type Transfer struct {
	Kind   string  `yaml:"kind"` // "linear", "log", or "fixed"
	Factor float64 `yaml:"factor"`
}

// NormalizerConfig maps source types to transfer functions. Sources missing
// from the table fall back to a 1:1 linear transfer.
type NormalizerConfig map[string]Transfer

// DefaultNormalizerConfig returns the production transfer table.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		string(source.SourceHackerNews):   {Kind: "linear", Factor: 0.8},
		string(source.SourceDevTo):        {Kind: "linear", Factor: 5},
		string(source.SourceRedditTech):   {Kind: "log", Factor: 100},
		string(source.SourceRedditProg):   {Kind: "log", Factor: 100},
		string(source.SourceRedditWebdev): {Kind: "log", Factor: 100},
		string(source.SourceRedditML):     {Kind: "log", Factor: 100},
		string(source.SourceTechCrunch):   {Kind: "fixed", Factor: 100},
		string(source.SourceArsTechnica):  {Kind: "fixed", Factor: 100},
		string(source.SourceCoinDesk):     {Kind: "fixed", Factor: 100},
	}
}

// Normalize maps a raw source metric onto [0, 1000], rounded to nearest.
func Normalize(rawMetric int, st source.SourceType, cfg NormalizerConfig) int {
	tf, ok := cfg[string(st)]
	if !ok {
		tf = Transfer{Kind: "linear", Factor: 1}
	}

	var score float64
	switch tf.Kind {
	case "log":
		if rawMetric <= 0 {
			score = 0
		} else {
			score = math.Log(float64(rawMetric)+1) * tf.Factor
		}
	case "fixed":
		score = tf.Factor
	default:
		score = float64(rawMetric) * tf.Factor
	}

	return clampScore(score)
}

func clampScore(score float64) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return int(math.Round(score))
}
