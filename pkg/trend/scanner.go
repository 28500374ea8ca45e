package trend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/source"
)

// ErrCycleRunning signals that a scan or processing cycle is already in
// flight. Callers treat it as an expected skip, not a failure.
var ErrCycleRunning = errors.New("cycle already running")

// ScanConfig controls the persistence gate and dedup window of a scan cycle.
type ScanConfig struct {
	MinSaveScore    int           // viral score must exceed this to persist
	DedupWindow     time.Duration // trailing window of trends to dedup against
	DedupMaxRecords int           // hard cap on the dedup snapshot size
	Category        string        // category tag for persisted trends
}

// DefaultScanConfig returns the canonical scan gate.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MinSaveScore:    50,
		DedupWindow:     48 * time.Hour,
		DedupMaxRecords: 200,
		Category:        "tech",
	}
}

// Scanner runs one ingest cycle: fetch all sources, score, dedup, persist.
type Scanner struct {
	store   store.Store
	sources []source.Source
	norm    NormalizerConfig
	scorer  *Scorer
	deduper *Deduper
	cfg     ScanConfig
	log     *slog.Logger
	running atomic.Bool
}

// NewScanner wires a scan pipeline.
func NewScanner(s store.Store, sources []source.Source, norm NormalizerConfig, scorer *Scorer, deduper *Deduper, cfg ScanConfig, log *slog.Logger) *Scanner {
	if cfg.MinSaveScore == 0 {
		cfg = DefaultScanConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{
		store:   s,
		sources: sources,
		norm:    norm,
		scorer:  scorer,
		deduper: deduper,
		cfg:     cfg,
		log:     log,
	}
}

// Scan fetches every configured source, scores the union of the results,
// dedups against a snapshot of recent trends, and persists the survivors.
// A failing source is logged and skipped; it never aborts its siblings.
// Scan is non-reentrant: an overlapping call returns ErrCycleRunning.
func (s *Scanner) Scan(ctx context.Context) ([]store.Trend, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer s.running.Store(false)

	var items []source.RawItem
	for _, src := range s.sources {
		got, err := src.Collect(ctx)
		if err != nil {
			s.log.Warn("source fetch failed", "source", src.Name(), "error", err)
			continue
		}
		s.log.Debug("source collected", "source", src.Name(), "items", len(got))
		items = append(items, got...)
	}

	// One snapshot per cycle: dedup never sees writes from another cycle.
	since := time.Now().UTC().Add(-s.cfg.DedupWindow)
	recent, err := s.store.RecentTrends(ctx, since, s.cfg.DedupMaxRecords)
	if err != nil {
		return nil, fmt.Errorf("load dedup snapshot: %w", err)
	}

	var saved []store.Trend
	for _, item := range items {
		normalized := Normalize(item.RawMetric, item.Source, s.norm)
		viral := s.scorer.ViralScore(item.Title, item.Source, normalized, item.PublishedAt)

		if viral <= s.cfg.MinSaveScore {
			s.log.Debug("trend below save threshold", "title", item.Title, "viral", viral)
			continue
		}

		if s.deduper.IsDuplicate(item.Title, item.Source, recent) {
			s.log.Debug("duplicate trend suppressed", "title", item.Title, "source", item.Source)
			continue
		}

		t := store.Trend{
			Title:           item.Title,
			Category:        s.cfg.Category,
			Source:          string(item.Source),
			URL:             item.URL,
			NormalizedScore: normalized,
			ViralScore:      viral,
			QualityTier:     s.scorer.Tier(viral),
			Keywords:        s.scorer.MatchedKeywords(item.Title),
			Status:          store.StatusPending,
			PublishedAt:     item.PublishedAt,
		}

		if err := s.store.InsertTrend(ctx, &t); err != nil {
			s.log.Error("trend save failed", "title", t.Title, "error", err)
			continue
		}

		// Later candidates in the same cycle dedup against this one too.
		recent = append(recent, t)
		saved = append(saved, t)
		s.log.Info("trend saved",
			"title", t.Title, "source", t.Source,
			"score", t.NormalizedScore, "viral", t.ViralScore, "tier", t.QualityTier)
	}

	s.log.Info("scan cycle done", "collected", len(items), "saved", len(saved))
	return saved, nil
}
