package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGetTrend(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := &Trend{
		Title:           "OpenAI ships a new reasoning model",
		Category:        "tech",
		Source:          "hackernews",
		URL:             "https://example.com/story",
		NormalizedScore: 400,
		ViralScore:      750,
		QualityTier:     "high",
		Keywords:        []string{"OpenAI", "LLM"},
	}
	if err := s.InsertTrend(ctx, in); err != nil {
		t.Fatalf("InsertTrend: %v", err)
	}
	if in.ID == 0 {
		t.Fatal("inserted trend has no id")
	}

	got, err := s.GetTrend(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetTrend: %v", err)
	}
	if got.Title != in.Title || got.ViralScore != 750 || got.QualityTier != "high" {
		t.Errorf("got %+v", got)
	}
	if got.Status != StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "OpenAI" {
		t.Errorf("keywords = %v", got.Keywords)
	}
	if got.CreatedAt.IsZero() || got.PublishedAt.IsZero() {
		t.Error("timestamps not defaulted")
	}
}

func TestGetTrendNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetTrend(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestInsertTrendDuplicateTitleSource(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := &Trend{Title: "Same headline twice", Source: "hackernews"}
	if err := s.InsertTrend(ctx, a); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	b := &Trend{Title: "Same headline twice", Source: "hackernews"}
	if err := s.InsertTrend(ctx, b); err == nil {
		t.Error("duplicate (title, source) insert must fail")
	}

	// Same title from a different source is a separate trend.
	c := &Trend{Title: "Same headline twice", Source: "devto"}
	if err := s.InsertTrend(ctx, c); err != nil {
		t.Errorf("different source insert: %v", err)
	}
}

func TestListTrendsFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seed := []*Trend{
		{Title: "pending low score trend", Source: "devto", ViralScore: 100, QualityTier: "low"},
		{Title: "pending high score trend", Source: "hackernews", ViralScore: 700, QualityTier: "high"},
		{Title: "already handled trend", Source: "hackernews", ViralScore: 900, QualityTier: "premium"},
	}
	for _, tr := range seed {
		if err := s.InsertTrend(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.MarkProcessed(ctx, seed[2].ID, 1); err != nil {
		t.Fatal(err)
	}

	unprocessed, err := s.ListTrends(ctx, QueryOpts{Unprocessed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(unprocessed) != 2 {
		t.Errorf("unprocessed = %d, want 2", len(unprocessed))
	}

	// MinViral is a strict lower bound.
	above, err := s.ListTrends(ctx, QueryOpts{MinViral: 700})
	if err != nil {
		t.Fatal(err)
	}
	if len(above) != 1 || above[0].ViralScore != 900 {
		t.Errorf("above 700 = %+v", above)
	}

	bySource, err := s.ListTrends(ctx, QueryOpts{Source: "devto"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySource) != 1 {
		t.Errorf("devto trends = %d, want 1", len(bySource))
	}

	byTier, err := s.ListTrends(ctx, QueryOpts{Tier: "high"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byTier) != 1 || byTier[0].Title != "pending high score trend" {
		t.Errorf("high tier = %+v", byTier)
	}
}

func TestListTrendsOrderByViral(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	scores := []int{300, 900, 600}
	for i, v := range scores {
		tr := &Trend{Title: "trend number " + string(rune('a'+i)) + " padding", Source: "hackernews", ViralScore: v}
		if err := s.InsertTrend(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListTrends(ctx, QueryOpts{OrderByViral: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ViralScore != 900 || got[1].ViralScore != 600 || got[2].ViralScore != 300 {
		t.Errorf("order = %v", []int{got[0].ViralScore, got[1].ViralScore, got[2].ViralScore})
	}
}

func TestListTrendsUnboundedForStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		tr := &Trend{Title: fmt.Sprintf("bulk seeded trend number %03d", i), Source: "hackernews", ViralScore: i}
		if err := s.InsertTrend(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}

	paged, err := s.ListTrends(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(paged) != 100 {
		t.Errorf("default listing = %d trends, want the 100-row page", len(paged))
	}

	// Aggregates must see every row, not one page.
	all, err := s.ListTrends(ctx, QueryOpts{Limit: -1})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 150 {
		t.Errorf("unbounded listing = %d trends, want 150", len(all))
	}
}

func TestListTrendsMaxErrors(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fresh := &Trend{Title: "trend with no failures yet", Source: "a", ViralScore: 500}
	retryable := &Trend{Title: "trend with some failures", Source: "b", ViralScore: 500}
	terminal := &Trend{Title: "trend at the error cap", Source: "c", ViralScore: 500}
	for _, tr := range []*Trend{fresh, retryable, terminal} {
		if err := s.InsertTrend(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := s.MarkErrored(ctx, retryable.ID, "boom"); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := s.MarkErrored(ctx, terminal.ID, "boom"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListTrends(ctx, QueryOpts{MaxErrors: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("MaxErrors filter kept %d trends, want 2", len(got))
	}
	for _, tr := range got {
		if tr.ID == terminal.ID {
			t.Error("trend at the error cap survived the filter")
		}
	}
}

func TestMarkProcessedClearsErrorState(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tr := &Trend{Title: "trend that fails then succeeds", Source: "hackernews", ViralScore: 500}
	if err := s.InsertTrend(ctx, tr); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkErrored(ctx, tr.ID, "model timeout"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkErrored(ctx, tr.ID, "model timeout again"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTrend(ctx, tr.ID)
	if got.Status != StatusError || got.ErrorCount != 2 || got.ProcessingError == "" || got.LastErrorAt == nil {
		t.Fatalf("after errors: %+v", got)
	}

	if err := s.MarkProcessed(ctx, tr.ID, 7); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTrend(ctx, tr.ID)
	if got.Status != StatusProcessed {
		t.Errorf("status = %s", got.Status)
	}
	if got.ErrorCount != 0 || got.ProcessingError != "" || got.LastErrorAt != nil {
		t.Errorf("error state not cleared: %+v", got)
	}
	if got.ArticleID == nil || *got.ArticleID != 7 {
		t.Errorf("article id = %v", got.ArticleID)
	}
	if got.ProcessedAt == nil {
		t.Error("processed at not set")
	}

	// Marking again is idempotent.
	if err := s.MarkProcessed(ctx, tr.ID, 7); err != nil {
		t.Errorf("second MarkProcessed: %v", err)
	}
}

func TestMarkMissingTrend(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.MarkProcessed(ctx, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkProcessed error = %v, want ErrNotFound", err)
	}
	if err := s.MarkErrored(ctx, 99, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkErrored error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProcessedBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-100 * time.Hour)
	seed := []*Trend{
		{Title: "old processed low tier trend", Source: "a", QualityTier: "low", CreatedAt: old},
		{Title: "old processed high tier trend", Source: "b", QualityTier: "premium", CreatedAt: old},
		{Title: "old pending low tier trend", Source: "c", QualityTier: "low", CreatedAt: old},
		{Title: "fresh processed low tier trend", Source: "d", QualityTier: "low"},
	}
	for _, tr := range seed {
		if err := s.InsertTrend(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}
	for _, i := range []int{0, 1, 3} {
		if err := s.MarkProcessed(ctx, seed[i].ID, 1); err != nil {
			t.Fatal(err)
		}
	}

	cutoff := time.Now().UTC().Add(-72 * time.Hour)
	n, err := s.DeleteProcessedBefore(ctx, cutoff, []string{"low", "standard"})
	if err != nil {
		t.Fatalf("DeleteProcessedBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d trends, want 1 (only old+processed+low)", n)
	}

	if _, err := s.GetTrend(ctx, seed[0].ID); !errors.Is(err, ErrNotFound) {
		t.Error("old processed low tier trend survived the sweep")
	}
	for _, i := range []int{1, 2, 3} {
		if _, err := s.GetTrend(ctx, seed[i].ID); err != nil {
			t.Errorf("trend %d wrongly swept: %v", seed[i].ID, err)
		}
	}
}

func TestArticles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tr := &Trend{Title: "trend backing an article", Source: "hackernews", ViralScore: 600}
	if err := s.InsertTrend(ctx, tr); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetArticleByTrend(ctx, tr.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound before insert", err)
	}

	a := &Article{
		TrendID:         tr.ID,
		Title:           "Generated article about the trend",
		Slug:            "generated-article-about-the-trend",
		MetaDescription: "meta",
		Keywords:        []string{"trend", "article"},
		Content:         "## Body\n\ntext",
		SEOScore:        75,
	}
	if err := s.InsertArticle(ctx, a); err != nil {
		t.Fatalf("InsertArticle: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("inserted article has no id")
	}
	if a.Status != "published" {
		t.Errorf("status defaulted to %q, want published", a.Status)
	}

	got, err := s.GetArticleByTrend(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetArticleByTrend: %v", err)
	}
	if got.Title != a.Title || got.SEOScore != 75 {
		t.Errorf("got %+v", got)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("keywords = %v", got.Keywords)
	}

	list, err := s.ListArticles(ctx, 10)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("articles = %d, want 1", len(list))
	}
}
