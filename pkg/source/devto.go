package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const devtoArticlesURL = "https://dev.to/api/articles?top=7"

// DevTo collects top articles of the week from the dev.to API.
type DevTo struct {
	client  *http.Client
	baseURL string
}

// NewDevTo creates a new dev.to collector.
func NewDevTo(timeout time.Duration) *DevTo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DevTo{
		client:  &http.Client{Timeout: timeout},
		baseURL: devtoArticlesURL,
	}
}

// NewDevToWithURL creates a collector against a custom endpoint.
func NewDevToWithURL(baseURL string, timeout time.Duration) *DevTo {
	d := NewDevTo(timeout)
	d.baseURL = baseURL
	return d
}

func (d *DevTo) Name() SourceType { return SourceDevTo }

type devtoArticle struct {
	Title          string `json:"title"`
	ReactionsCount int    `json:"public_reactions_count"`
	URL            string `json:"url"`
	PublishedAt    string `json:"published_at"`
}

func (d *DevTo) Collect(ctx context.Context) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL, nil)
	if err != nil {
		return nil, &FetchError{Source: d.Name(), Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: d.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: d.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, &FetchError{Source: d.Name(), Err: fmt.Errorf("decode: %w", err)}
	}

	var items []RawItem
	for _, a := range articles {
		title := CleanTitle(a.Title)
		if !ValidTitle(title) {
			continue
		}

		published := time.Now().UTC()
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			published = t.UTC()
		}

		items = append(items, RawItem{
			Title:       title,
			Source:      SourceDevTo,
			RawMetric:   a.ReactionsCount,
			URL:         a.URL,
			PublishedAt: published,
		})
	}

	return items, nil
}
