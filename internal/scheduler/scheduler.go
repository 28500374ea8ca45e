package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DanielAquino2003/TrendWriter/internal/config"
	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/trend"
)

// Scheduler runs the recurring scan, process, stats and sweep jobs on
// cron schedules.
type Scheduler struct {
	cron      *cron.Cron
	store     store.Store
	scanner   *trend.Scanner
	processor *trend.Processor
	cfg       *config.Config
	log       *slog.Logger
}

// New wires the periodic jobs but does not start them.
func New(st store.Store, sc *trend.Scanner, pr *trend.Processor, cfg *config.Config, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		store:     st,
		scanner:   sc,
		processor: pr,
		cfg:       cfg,
		log:       log,
	}

	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"scan", cfg.Schedule.Scan, s.runScan},
		{"process", cfg.Schedule.Process, s.runProcess},
		{"stats", cfg.Schedule.Stats, s.runStats},
		{"sweep", cfg.Schedule.Sweep, s.runSweep},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			return nil, fmt.Errorf("schedule %s job: %w", j.name, err)
		}
	}
	return s, nil
}

// Start runs the cron loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("scheduler started",
		"scan", s.cfg.Schedule.Scan,
		"process", s.cfg.Schedule.Process,
		"sweep", s.cfg.Schedule.Sweep)
	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	saved, err := s.scanner.Scan(ctx)
	if errors.Is(err, trend.ErrCycleRunning) {
		s.log.Info("scan already in progress, skipping")
		return
	}
	if err != nil {
		s.log.Error("scan cycle failed", "error", err)
		return
	}
	s.log.Info("scan cycle finished", "saved", len(saved))
}

func (s *Scheduler) runProcess() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	article, err := s.processor.ProcessBest(ctx)
	if errors.Is(err, trend.ErrCycleRunning) {
		s.log.Info("processing already in progress, skipping")
		return
	}
	if err != nil {
		s.log.Error("processing cycle failed", "error", err)
		return
	}
	if article == nil {
		s.log.Info("no eligible trend to process")
		return
	}
	s.log.Info("article generated", "article_id", article.ID, "title", article.Title)
}

func (s *Scheduler) runStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trends, err := s.store.ListTrends(ctx, store.QueryOpts{Limit: -1})
	if err != nil {
		s.log.Error("stats query failed", "error", err)
		return
	}
	stats := trend.ComputeStats(trends, s.cfg.Selector)
	s.log.Info("pipeline stats",
		"total", stats.Total,
		"pending", stats.Pending,
		"processed", stats.Processed,
		"errored", stats.Errored,
		"eligible", stats.Eligible,
		"processing_rate", stats.ProcessingRate)
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.cfg.RetentionMaxAge())
	n, err := s.store.DeleteProcessedBefore(ctx, cutoff, s.cfg.Retention.Tiers)
	if err != nil {
		s.log.Error("retention sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("retention sweep removed old trends", "count", n)
	}
}
