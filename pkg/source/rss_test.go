package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Tech</title>
    <item>
      <title>Chipmaker announces new fab investment</title>
      <link>https://example.com/fab</link>
      <pubDate>Sun, 01 Mar 2026 09:30:00 GMT</pubDate>
    </item>
    <item>
      <title>ok</title>
      <link>https://example.com/short</link>
    </item>
  </channel>
</rss>`

func TestRSSCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	feed := NewRSS(SourceTechCrunch, srv.URL, 5*time.Second)
	items, err := feed.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (short title dropped)", len(items))
	}
	item := items[0]
	if item.Title != "Chipmaker announces new fab investment" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Source != SourceTechCrunch {
		t.Errorf("source = %s", item.Source)
	}
	if item.RawMetric != 0 {
		t.Errorf("rss raw metric = %d, want 0", item.RawMetric)
	}
	if item.URL != "https://example.com/fab" {
		t.Errorf("url = %q", item.URL)
	}
	if item.PublishedAt.IsZero() {
		t.Error("published at not parsed")
	}
}

func TestRSSCollectBadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer srv.Close()

	feed := NewRSS(SourceCoinDesk, srv.URL, 5*time.Second)
	if _, err := feed.Collect(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}
