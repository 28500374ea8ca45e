package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDevToCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"title": "Understanding Go memory model", "public_reactions_count": 210, "url": "https://dev.to/a", "published_at": "2026-03-01T08:00:00Z"},
			{"title": "tiny", "public_reactions_count": 5, "url": "https://dev.to/b", "published_at": "2026-03-01T09:00:00Z"}
		]`))
	}))
	defer srv.Close()

	dt := NewDevToWithURL(srv.URL, 5*time.Second)
	items, err := dt.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Title != "Understanding Go memory model" || items[0].RawMetric != 210 {
		t.Errorf("item = %+v", items[0])
	}
	if items[0].Source != SourceDevTo {
		t.Errorf("source = %s", items[0].Source)
	}
}
