package source

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
)

// SourceType identifies which feed an item came from.
type SourceType string

const (
	SourceHackerNews   SourceType = "hackernews"
	SourceRedditTech   SourceType = "reddit_technology"
	SourceRedditProg   SourceType = "reddit_programming"
	SourceRedditWebdev SourceType = "reddit_webdev"
	SourceRedditML     SourceType = "reddit_machinelearning"
	SourceDevTo        SourceType = "devto"
	SourceTechCrunch   SourceType = "techcrunch"
	SourceArsTechnica  SourceType = "arstechnica"
	SourceCoinDesk     SourceType = "coindesk"
)

// AllSourceTypes returns all known source types.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceHackerNews,
		SourceRedditTech,
		SourceRedditProg,
		SourceRedditWebdev,
		SourceRedditML,
		SourceDevTo,
		SourceTechCrunch,
		SourceArsTechnica,
		SourceCoinDesk,
	}
}

// IsReddit reports whether a source type is one of the reddit listings.
func IsReddit(st SourceType) bool {
	return strings.HasPrefix(string(st), "reddit_")
}

// MinTitleLength is the shortest title an adapter will emit.
const MinTitleLength = 10

// RawItem is the standardized shape every adapter produces. RawMetric carries
// the source's native popularity signal (HN points, reddit upvotes, dev.to
// reactions); feeds with no native signal emit 0.
type RawItem struct {
	Title       string
	Source      SourceType
	RawMetric   int
	URL         string
	PublishedAt time.Time
}

// Source is the interface every feed adapter must implement.
type Source interface {
	Name() SourceType
	Collect(ctx context.Context) ([]RawItem, error)
}

// FetchError wraps a per-source network or parse failure. One source failing
// never aborts the other sources in a scan cycle.
type FetchError struct {
	Source SourceType
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CleanTitle decodes HTML entities and collapses runs of whitespace.
func CleanTitle(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// ValidTitle reports whether a cleaned title is long enough to keep.
func ValidTitle(s string) bool {
	return len(s) >= MinTitleLength
}
