package generate

import (
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`https?://`)

// SEOScore rates a draft 0-100 on title and meta length, content length,
// keyword density, heading structure, paragraph count, and link presence.
func SEOScore(d *Draft) int {
	score := 0

	switch l := len(d.Title); {
	case l >= 30 && l <= 60:
		score += 30
	case l >= 20 && l <= 70:
		score += 15
	}

	switch l := len(d.MetaDescription); {
	case l >= 120 && l <= 160:
		score += 20
	case l >= 100 && l <= 180:
		score += 10
	}

	switch l := len(d.Content); {
	case l >= 1000 && l <= 1500:
		score += 30
	case l >= 800 && l <= 2000:
		score += 20
	case l >= 600:
		score += 10
	}

	if density := keywordDensity(d.Content, d.Keywords); density > 0 {
		switch {
		case density >= 1 && density <= 3:
			score += 25
		case density >= 0.5 && density <= 4:
			score += 15
		}
	}

	hasH2 := strings.Contains(d.Content, "## ")
	hasH3 := strings.Contains(d.Content, "### ")
	switch {
	case hasH2 && hasH3:
		score += 15
	case hasH2 || hasH3:
		score += 8
	}

	paragraphs := 0
	for _, p := range strings.Split(d.Content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	switch {
	case paragraphs >= 8:
		score += 15
	case paragraphs >= 5:
		score += 10
	case paragraphs >= 3:
		score += 5
	}

	if linkPattern.MatchString(d.Content) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

func keywordDensity(content string, keywords []string) float64 {
	if content == "" || len(keywords) == 0 {
		return 0
	}

	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}

	lower := strings.ToLower(content)
	hits := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		hits += strings.Count(lower, kw)
	}

	return float64(hits) / float64(words) * 100
}
