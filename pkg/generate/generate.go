// Package generate produces SEO articles from trend topics through the Groq
// chat-completions API, falling back across an ordered model list.
package generate

import (
	"fmt"
	"regexp"
	"strings"
)

// Request carries the trend fields the generator needs.
type Request struct {
	Topic       string
	Category    string
	Source      string
	Description string
}

// Draft is a parsed, validated generated article.
type Draft struct {
	Title           string
	MetaDescription string
	Keywords        []string
	Content         string
	Slug            string
	SEOScore        int
}

// GenerationError means every model in the fallback list failed. The trend
// that triggered the call gets marked errored; the cycle does not retry a
// different trend.
type GenerationError struct {
	Models  int
	LastErr error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("all %d models failed, last error: %v", e.Models, e.LastErr)
}

func (e *GenerationError) Unwrap() error { return e.LastErr }

// parseDraft extracts the structured TITLE/META/KEYWORDS/CONTENT sections
// from a model response and validates minimum lengths.
func parseDraft(raw string) (*Draft, error) {
	d := &Draft{}
	var contentLines []string
	inContent := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "TITLE:"):
			d.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "TITLE:"))
		case strings.HasPrefix(trimmed, "META:"):
			d.MetaDescription = strings.TrimSpace(strings.TrimPrefix(trimmed, "META:"))
		case strings.HasPrefix(trimmed, "KEYWORDS:"):
			for _, k := range strings.Split(strings.TrimPrefix(trimmed, "KEYWORDS:"), ",") {
				if k = strings.TrimSpace(k); k != "" {
					d.Keywords = append(d.Keywords, k)
				}
			}
		case strings.HasPrefix(trimmed, "CONTENT:"):
			inContent = true
		case inContent:
			contentLines = append(contentLines, line)
		}
	}

	d.Content = strings.TrimSpace(strings.Join(contentLines, "\n"))
	d.Slug = Slugify(d.Title)

	if len(d.Title) < 10 {
		return nil, fmt.Errorf("generated title too short or empty")
	}
	if len(d.Content) < 500 {
		return nil, fmt.Errorf("generated article incomplete or too short")
	}
	if len(d.MetaDescription) < 100 {
		return nil, fmt.Errorf("generated meta description too short or empty")
	}

	d.SEOScore = SEOScore(d)
	return d, nil
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify builds a URL slug from a title, capped at 60 characters.
func Slugify(title string) string {
	if title == "" {
		return "untitled-article"
	}

	s := strings.ToLower(title)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = s[:60]
		s = strings.Trim(s, "-")
	}
	if s == "" {
		return "untitled-article"
	}
	return s
}
