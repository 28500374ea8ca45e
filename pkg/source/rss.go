package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSS collects headlines from a single RSS/Atom feed. RSS feeds carry no
// native popularity signal, so RawMetric stays 0 and the normalizer assigns
// the fixed base score.
type RSS struct {
	client     *http.Client
	parser     *gofeed.Parser
	url        string
	sourceType SourceType
}

// NewRSS creates a collector for one feed.
func NewRSS(st SourceType, url string, timeout time.Duration) *RSS {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RSS{
		client:     &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
		url:        url,
		sourceType: st,
	}
}

func (r *RSS) Name() SourceType { return r.sourceType }

func (r *RSS) Collect(ctx context.Context) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, &FetchError{Source: r.Name(), Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: r.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: r.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: r.Name(), Err: fmt.Errorf("parse: %w", err)}
	}

	var items []RawItem
	for _, entry := range parsed.Items {
		title := CleanTitle(entry.Title)
		if !ValidTitle(title) {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		items = append(items, RawItem{
			Title:       title,
			Source:      r.sourceType,
			RawMetric:   0,
			URL:         link,
			PublishedAt: published,
		})
	}

	return items, nil
}
