package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const hnSearchURL = "https://hn.algolia.com/api/v1/search?tags=front_page"

// HackerNews collects front-page stories from the Algolia HN API.
type HackerNews struct {
	client  *http.Client
	baseURL string
}

// NewHackerNews creates a new HN collector.
func NewHackerNews(timeout time.Duration) *HackerNews {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HackerNews{
		client:  &http.Client{Timeout: timeout},
		baseURL: hnSearchURL,
	}
}

// NewHackerNewsWithURL creates a collector against a custom endpoint.
func NewHackerNewsWithURL(baseURL string, timeout time.Duration) *HackerNews {
	h := NewHackerNews(timeout)
	h.baseURL = baseURL
	return h
}

func (h *HackerNews) Name() SourceType { return SourceHackerNews }

type hnHit struct {
	Title     string `json:"title"`
	Points    int    `json:"points"`
	URL       string `json:"url"`
	ObjectID  string `json:"objectID"`
	CreatedAt string `json:"created_at"`
}

func (h *HackerNews) Collect(ctx context.Context) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL, nil)
	if err != nil {
		return nil, &FetchError{Source: h.Name(), Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: h.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: h.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload struct {
		Hits []hnHit `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &FetchError{Source: h.Name(), Err: fmt.Errorf("decode: %w", err)}
	}

	var items []RawItem
	for _, hit := range payload.Hits {
		title := CleanTitle(hit.Title)
		if !ValidTitle(title) {
			continue
		}

		url := hit.URL
		if url == "" {
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID)
		}

		published := time.Now().UTC()
		if t, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			published = t.UTC()
		}

		items = append(items, RawItem{
			Title:       title,
			Source:      SourceHackerNews,
			RawMetric:   hit.Points,
			URL:         url,
			PublishedAt: published,
		})
	}

	return items, nil
}
