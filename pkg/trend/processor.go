package trend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/generate"
)

// Generator produces an article draft for a selected trend. Implemented by
// pkg/generate; faked in tests.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) (*generate.Draft, error)
}

// selectionFetchLimit bounds how many candidate trends one cycle examines.
const selectionFetchLimit = 200

// Processor runs the select-and-generate cycle: pick the single best
// eligible trend, generate an article for it, and record the outcome.
// Only one cycle may be in flight; overlapping invocations skip.
type Processor struct {
	store   store.Store
	gen     Generator
	cfg     SelectorConfig
	log     *slog.Logger
	running atomic.Bool
}

// NewProcessor wires a processing cycle.
func NewProcessor(s store.Store, gen Generator, cfg SelectorConfig, log *slog.Logger) *Processor {
	if cfg.ProcessingThreshold == 0 {
		cfg = DefaultSelectorConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{store: s, gen: gen, cfg: cfg, log: log}
}

// ProcessBest selects and processes the best eligible trend. Returns
// (nil, nil) when no trend is eligible; that is a normal quiet outcome.
// A generation failure marks the trend errored and ends the cycle without
// falling back to a different trend.
func (p *Processor) ProcessBest(ctx context.Context) (*store.Article, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer p.running.Store(false)

	// Error-terminal trends are excluded in the query so they cannot crowd
	// eligible ones out of the fetch window.
	trends, err := p.store.ListTrends(ctx, store.QueryOpts{
		Unprocessed:  true,
		MinViral:     p.cfg.ProcessingThreshold,
		MaxErrors:    p.cfg.MaxErrorCount,
		OrderByViral: true,
		Limit:        selectionFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidate trends: %w", err)
	}

	best := SelectBest(trends, p.cfg)
	if best == nil {
		p.log.Debug("no eligible trend to process", "threshold", p.cfg.ProcessingThreshold)
		return nil, nil
	}

	p.log.Info("processing best trend",
		"id", best.ID, "title", best.Title,
		"viral", best.ViralScore, "tier", best.QualityTier)
	return p.process(ctx, best)
}

// ProcessTrend processes one specific trend by id, for manual triggers.
func (p *Processor) ProcessTrend(ctx context.Context, id int64) (*store.Article, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer p.running.Store(false)

	t, err := p.store.GetTrend(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == store.StatusProcessed {
		p.log.Info("trend already processed", "id", id)
		article, err := p.store.GetArticleByTrend(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return article, err
	}
	return p.process(ctx, t)
}

func (p *Processor) process(ctx context.Context, t *store.Trend) (*store.Article, error) {
	// A trend that already has an article just needs its flag fixed.
	existing, err := p.store.GetArticleByTrend(ctx, t.ID)
	if err == nil {
		p.log.Info("article already exists, marking trend processed", "trend", t.ID, "article", existing.ID)
		if err := p.store.MarkProcessed(ctx, t.ID, existing.ID); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	draft, err := p.gen.Generate(ctx, generate.Request{
		Topic:       t.Title,
		Category:    t.Category,
		Source:      t.Source,
		Description: t.Description,
	})
	if err != nil {
		if markErr := p.store.MarkErrored(ctx, t.ID, err.Error()); markErr != nil {
			p.log.Error("failed to mark trend errored", "trend", t.ID, "error", markErr)
		}
		return nil, fmt.Errorf("generate article for trend %d: %w", t.ID, err)
	}

	article := &store.Article{
		TrendID:         t.ID,
		Title:           draft.Title,
		Slug:            draft.Slug,
		MetaDescription: draft.MetaDescription,
		Keywords:        draft.Keywords,
		Content:         draft.Content,
		SEOScore:        draft.SEOScore,
	}
	if err := p.store.InsertArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("save article for trend %d: %w", t.ID, err)
	}

	if err := p.store.MarkProcessed(ctx, t.ID, article.ID); err != nil {
		return nil, err
	}

	p.log.Info("article generated",
		"trend", t.ID, "article", article.ID,
		"title", article.Title, "seo", article.SEOScore)
	return article, nil
}
