package trend

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DanielAquino2003/TrendWriter/pkg/source"
)

// Quality tiers, best first.
const (
	TierPremium  = "premium"
	TierHigh     = "high"
	TierMedium   = "medium"
	TierStandard = "standard"
	TierLow      = "low"
)

// KeywordCategory groups terms that share a bonus value. Only the single
// highest matching category bonus is applied to a title, so stuffing a title
// with keywords from several categories buys nothing extra.
type KeywordCategory struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
	Bonus float64  `yaml:"bonus"`
}

// TierThreshold maps a minimum viral score to a quality tier label.
type TierThreshold struct {
	Tier     string `yaml:"tier"`
	MinScore int    `yaml:"min_score"`
}

// ScoringConfig is the externalized viral-score table. Loaded at startup and
// read-only afterwards; tests pass fixed fixtures instead of the production
// list.
type ScoringConfig struct {
	KeywordCategories   []KeywordCategory  `yaml:"keyword_categories"`
	SourceMultipliers   map[string]float64 `yaml:"source_multipliers"`
	RecencyStartBonus   float64            `yaml:"recency_start_bonus"`
	RecencyDecayPerHour float64            `yaml:"recency_decay_per_hour"`
	BreakingPhrases     []string           `yaml:"breaking_phrases"`
	BreakingMultiplier  float64            `yaml:"breaking_multiplier"`
	TitleLengthMin      int                `yaml:"title_length_min"`
	TitleLengthMax      int                `yaml:"title_length_max"`
	TitleLengthBonus    float64            `yaml:"title_length_bonus"`
	ClickbaitPhrases    []string           `yaml:"clickbait_phrases"`
	ClickbaitPenalty    float64            `yaml:"clickbait_penalty"`
	QuestionBonus       float64            `yaml:"question_bonus"`
	Tiers               []TierThreshold    `yaml:"tiers"`
}

// DefaultScoringConfig returns the production scoring table.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		KeywordCategories: []KeywordCategory{
			{
				Name: "high_value",
				Terms: []string{
					"GPT", "Claude", "OpenAI", "Anthropic", "LLM", "machine learning",
					"neural network", "ChatGPT", "Gemini", "diffusion", "transformer",
				},
				Bonus: 100,
			},
			{
				Name: "medium_value",
				Terms: []string{
					"React", "Next.js", "TypeScript", "Python", "Rust", "Go",
					"Kubernetes", "Docker", "AWS", "GCP", "Azure", "Vercel",
				},
				Bonus: 75,
			},
			{
				Name: "trending",
				Terms: []string{
					"AI", "crypto", "blockchain", "startup", "YC", "funding",
					"Series A", "IPO", "acquisition", "unicorn",
				},
				Bonus: 50,
			},
			{
				Name: "frameworks",
				Terms: []string{
					"Vue", "Angular", "Django", "FastAPI", "Svelte", "Tailwind",
					"GraphQL", "PostgreSQL", "MongoDB",
				},
				Bonus: 25,
			},
		},
		SourceMultipliers: map[string]float64{
			string(source.SourceHackerNews):   1.5,
			string(source.SourceRedditProg):   1.4,
			string(source.SourceRedditML):     1.3,
			string(source.SourceRedditWebdev): 1.2,
			string(source.SourceDevTo):        1.2,
			string(source.SourceArsTechnica):  1.1,
			string(source.SourceTechCrunch):   1.0,
			string(source.SourceRedditTech):   0.9,
			string(source.SourceCoinDesk):     0.8,
		},
		RecencyStartBonus:   100,
		RecencyDecayPerHour: 5,
		BreakingPhrases: []string{
			"breaking:", "just announced", "launches", "acquires", "funding",
			"shuts down", "raises $", "million", "billion", "ipo", "merger",
			"leaked", "revealed", "first look", "exclusive", "official",
		},
		BreakingMultiplier: 1.5,
		TitleLengthMin:     50,
		TitleLengthMax:     100,
		TitleLengthBonus:   25,
		ClickbaitPhrases: []string{
			"you won't believe", "shocking", "amazing", "incredible",
		},
		ClickbaitPenalty: 0.7,
		QuestionBonus:    20,
		Tiers: []TierThreshold{
			{Tier: TierPremium, MinScore: 800},
			{Tier: TierHigh, MinScore: 600},
			{Tier: TierMedium, MinScore: 400},
			{Tier: TierStandard, MinScore: 200},
			{Tier: TierLow, MinScore: 0},
		},
	}
}

// Scorer computes viral scores and quality tiers from a fixed config table.
type Scorer struct {
	cfg ScoringConfig
	now func() time.Time
}

// NewScorer creates a scorer using wall-clock time for recency.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// NewScorerAt creates a scorer with an injected clock.
func NewScorerAt(cfg ScoringConfig, now func() time.Time) *Scorer {
	return &Scorer{cfg: cfg, now: now}
}

// ViralScore combines the normalized score with keyword, credibility,
// recency, breaking-news, title-shape, and clickbait adjustments. Applied in
// a fixed order; the breaking multiplier runs before the clickbait penalty.
// Result is clamped to [0, 1000].
func (s *Scorer) ViralScore(title string, st source.SourceType, normalized int, publishedAt time.Time) int {
	lower := strings.ToLower(title)
	score := float64(normalized)

	// Single highest category bonus only.
	best := 0.0
	for _, cat := range s.cfg.KeywordCategories {
		if cat.Bonus <= best {
			continue
		}
		for _, term := range cat.Terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				best = cat.Bonus
				break
			}
		}
	}
	score += best

	mult, ok := s.cfg.SourceMultipliers[string(st)]
	if !ok {
		mult = 1.0
	}
	score *= mult

	ageHours := s.now().Sub(publishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	recency := s.cfg.RecencyStartBonus - ageHours*s.cfg.RecencyDecayPerHour
	if recency > 0 {
		score += recency
	}

	if containsAny(lower, s.cfg.BreakingPhrases) {
		score *= s.cfg.BreakingMultiplier
	}

	if n := utf8.RuneCountInString(title); n > s.cfg.TitleLengthMin && n < s.cfg.TitleLengthMax {
		score += s.cfg.TitleLengthBonus
	}

	if containsAny(lower, s.cfg.ClickbaitPhrases) {
		score *= s.cfg.ClickbaitPenalty
	}

	if strings.Contains(title, "?") {
		score += s.cfg.QuestionBonus
	}

	return clampScore(score)
}

// Tier maps a viral score to its quality tier. The threshold table is
// ordered best-first and ends at zero, so every score maps to exactly one
// tier.
func (s *Scorer) Tier(viralScore int) string {
	for _, t := range s.cfg.Tiers {
		if viralScore >= t.MinScore {
			return t.Tier
		}
	}
	if n := len(s.cfg.Tiers); n > 0 {
		return s.cfg.Tiers[n-1].Tier
	}
	return TierLow
}

// MatchedKeywords returns every configured term that appears in the title,
// used to tag the stored trend.
func (s *Scorer) MatchedKeywords(title string) []string {
	lower := strings.ToLower(title)
	var matched []string
	for _, cat := range s.cfg.KeywordCategories {
		for _, term := range cat.Terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				matched = append(matched, term)
			}
		}
	}
	return matched
}

// TierRank returns the position of a tier in the threshold ordering, best
// first. Unknown tiers rank last.
func (s *Scorer) TierRank(tier string) int {
	for i, t := range s.cfg.Tiers {
		if t.Tier == tier {
			return i
		}
	}
	return len(s.cfg.Tiers)
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
