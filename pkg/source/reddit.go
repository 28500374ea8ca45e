package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Mozilla/5.0 (compatible; TrendWriter/1.0)"

// Reddit collects hot posts from a single subreddit's public JSON listing.
// Each configured subreddit is its own source so that scoring can weight
// them independently.
type Reddit struct {
	client     *http.Client
	baseURL    string
	subreddit  string
	sourceType SourceType
}

// NewReddit creates a collector for one subreddit.
func NewReddit(subreddit string, st SourceType, timeout time.Duration) *Reddit {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reddit{
		client:     &http.Client{Timeout: timeout},
		baseURL:    "https://www.reddit.com",
		subreddit:  subreddit,
		sourceType: st,
	}
}

// NewRedditWithURL creates a collector against a custom endpoint.
func NewRedditWithURL(baseURL, subreddit string, st SourceType, timeout time.Duration) *Reddit {
	r := NewReddit(subreddit, st, timeout)
	r.baseURL = baseURL
	return r
}

func (r *Reddit) Name() SourceType { return r.sourceType }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}

func (r *Reddit) Collect(ctx context.Context) ([]RawItem, error) {
	reqURL := fmt.Sprintf("%s/r/%s/hot.json?limit=50", r.baseURL, r.subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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
		return nil, &FetchError{Source: r.Name(), Err: fmt.Errorf("r/%s status %d", r.subreddit, resp.StatusCode)}
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, &FetchError{Source: r.Name(), Err: fmt.Errorf("decode r/%s: %w", r.subreddit, err)}
	}

	var items []RawItem
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}

		title := CleanTitle(post.Title)
		if !ValidTitle(title) {
			continue
		}

		postURL := post.URL
		if postURL == "" || strings.HasPrefix(postURL, "/r/") {
			postURL = "https://reddit.com" + post.Permalink
		}

		items = append(items, RawItem{
			Title:       title,
			Source:      r.sourceType,
			RawMetric:   post.Score,
			URL:         postURL,
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}

	return items, nil
}
