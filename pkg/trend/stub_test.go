package trend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/generate"
	"github.com/DanielAquino2003/TrendWriter/pkg/source"
)

// memStore is an in-memory store.Store for pipeline tests.
type memStore struct {
	mu       sync.Mutex
	trends   []store.Trend
	articles []store.Article
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (m *memStore) InsertTrend(ctx context.Context, t *store.Trend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.trends = append(m.trends, *t)
	return nil
}

func (m *memStore) GetTrend(ctx context.Context, id int64) (*store.Trend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.trends {
		if m.trends[i].ID == id {
			t := m.trends[i]
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListTrends(ctx context.Context, opts store.QueryOpts) ([]store.Trend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []store.Trend
	for _, t := range m.trends {
		if opts.Unprocessed && t.Status == store.StatusProcessed {
			continue
		}
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if opts.MinViral > 0 && t.ViralScore <= opts.MinViral {
			continue
		}
		if opts.MaxErrors > 0 && t.ErrorCount >= opts.MaxErrors {
			continue
		}
		if !opts.Since.IsZero() && t.CreatedAt.Before(opts.Since) {
			continue
		}
		out = append(out, t)
	}

	if opts.OrderByViral {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ViralScore > out[j].ViralScore
		})
	}

	// Mirror the SQLite store: zero limit pages at 100, negative is unbounded.
	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) RecentTrends(ctx context.Context, since time.Time, limit int) ([]store.Trend, error) {
	return m.ListTrends(ctx, store.QueryOpts{Since: since, Limit: limit})
}

func (m *memStore) MarkProcessed(ctx context.Context, id, articleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.trends {
		if m.trends[i].ID == id {
			now := time.Now().UTC()
			m.trends[i].Status = store.StatusProcessed
			m.trends[i].ProcessedAt = &now
			m.trends[i].ArticleID = &articleID
			m.trends[i].ProcessingError = ""
			m.trends[i].LastErrorAt = nil
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) MarkErrored(ctx context.Context, id int64, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.trends {
		if m.trends[i].ID == id {
			now := time.Now().UTC()
			m.trends[i].Status = store.StatusError
			m.trends[i].ProcessingError = msg
			m.trends[i].LastErrorAt = &now
			m.trends[i].ErrorCount++
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteProcessedBefore(ctx context.Context, cutoff time.Time, tiers []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tierSet := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		tierSet[t] = true
	}

	var kept []store.Trend
	var removed int64
	for _, t := range m.trends {
		if t.Status == store.StatusProcessed && tierSet[t.QualityTier] && t.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.trends = kept
	return removed, nil
}

func (m *memStore) InsertArticle(ctx context.Context, a *store.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID
	m.nextID++
	m.articles = append(m.articles, *a)
	return nil
}

func (m *memStore) GetArticleByTrend(ctx context.Context, trendID int64) (*store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.articles {
		if m.articles[i].TrendID == trendID {
			a := m.articles[i]
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListArticles(ctx context.Context, limit int) ([]store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]store.Article(nil), m.articles...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

// stubSource returns fixed items, or an error, optionally blocking on a
// channel to exercise the reentrancy guard.
type stubSource struct {
	name    source.SourceType
	items   []source.RawItem
	err     error
	release chan struct{}
}

func (s *stubSource) Name() source.SourceType { return s.name }

func (s *stubSource) Collect(ctx context.Context) ([]source.RawItem, error) {
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

// stubGenerator returns a canned draft or error and counts calls.
type stubGenerator struct {
	draft   *generate.Draft
	err     error
	calls   int
	release chan struct{}
}

func (g *stubGenerator) Generate(ctx context.Context, req generate.Request) (*generate.Draft, error) {
	if g.release != nil {
		<-g.release
	}
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.draft, nil
}
