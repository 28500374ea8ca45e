package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/DanielAquino2003/TrendWriter/internal/config"
	"github.com/DanielAquino2003/TrendWriter/internal/logging"
	"github.com/DanielAquino2003/TrendWriter/internal/scheduler"
	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/generate"
	"github.com/DanielAquino2003/TrendWriter/pkg/server"
	"github.com/DanielAquino2003/TrendWriter/pkg/source"
	"github.com/DanielAquino2003/TrendWriter/pkg/trend"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildSources(cfg *config.Config) []source.Source {
	timeout := cfg.Sources.ParseFetchTimeout()
	var sources []source.Source

	if cfg.Sources.HackerNews.Enabled {
		sources = append(sources, source.NewHackerNews(timeout))
	}
	if cfg.Sources.Reddit.Enabled {
		for _, sub := range cfg.Sources.Reddit.Subreddits {
			st := source.SourceType("reddit_" + strings.ToLower(sub))
			sources = append(sources, source.NewReddit(sub, st, timeout))
		}
	}
	if cfg.Sources.DevTo.Enabled {
		sources = append(sources, source.NewDevTo(timeout))
	}
	if cfg.Sources.RSS.Enabled {
		for _, f := range cfg.Sources.RSS.Feeds {
			sources = append(sources, source.NewRSS(source.SourceType(f.Name), f.URL, timeout))
		}
	}

	return sources
}

func buildScanner(cfg *config.Config, db store.Store, log *slog.Logger) *trend.Scanner {
	scorer := trend.NewScorer(cfg.Scoring)
	deduper := trend.NewDeduper(cfg.Scan.DedupThreshold)
	return trend.NewScanner(db, buildSources(cfg), cfg.Normalize, scorer, deduper, cfg.TrendScanConfig(), log)
}

func buildProcessor(cfg *config.Config, db store.Store, log *slog.Logger) *trend.Processor {
	models := cfg.Generator.Models
	if len(models) == 0 {
		models = generate.DefaultModels
	}
	gen := generate.NewClient(cfg.Generator.APIKey, cfg.Generator.BaseURL, models, cfg.GeneratorTimeout(), log)
	return trend.NewProcessor(db, gen, cfg.Selector, log)
}

func runScan() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Logging.Level)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	saved, err := buildScanner(cfg, db, log).Scan(context.Background())
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	fmt.Fprintf(os.Stderr, "saved %d trends\n", len(saved))
	for _, t := range saved {
		fmt.Fprintf(os.Stderr, "  [%d] %s (%s, %s)\n", t.ViralScore, t.Title, t.Source, t.QualityTier)
	}
	return nil
}

func runProcess(id int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Generator.APIKey == "" {
		return fmt.Errorf("generator api key not set (set GROQ_API_KEY)")
	}
	log := logging.New(cfg.Logging.Level)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	proc := buildProcessor(cfg, db, log)

	var article *store.Article
	if id > 0 {
		article, err = proc.ProcessTrend(context.Background(), id)
	} else {
		article, err = proc.ProcessBest(context.Background())
	}
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	if article == nil {
		fmt.Fprintln(os.Stderr, "no eligible trend to process")
		return nil
	}

	fmt.Fprintf(os.Stderr, "generated article %d: %s (seo %d)\n", article.ID, article.Title, article.SEOScore)
	return nil
}

func runTrends(jsonOutput bool, minScore, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	trends, err := db.ListTrends(context.Background(), store.QueryOpts{
		MinViral:     minScore,
		OrderByViral: true,
		Limit:        limit,
	})
	if err != nil {
		return fmt.Errorf("list trends: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trends)
	}

	if len(trends) == 0 {
		fmt.Println("no trends found (try scanning first: trendwriter scan)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tTIER\tSTATUS\tSOURCE\tTITLE")
	for _, t := range trends {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			t.ViralScore, t.QualityTier, t.Status, t.Source, t.Title)
	}
	return w.Flush()
}

func runStats() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	trends, err := db.ListTrends(context.Background(), store.QueryOpts{Limit: -1})
	if err != nil {
		return fmt.Errorf("list trends: %w", err)
	}

	stats := trend.ComputeStats(trends, cfg.Selector)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "total\t%d\n", stats.Total)
	fmt.Fprintf(w, "pending\t%d\n", stats.Pending)
	fmt.Fprintf(w, "processed\t%d\n", stats.Processed)
	fmt.Fprintf(w, "errored\t%d\n", stats.Errored)
	fmt.Fprintf(w, "eligible\t%d\n", stats.Eligible)
	fmt.Fprintf(w, "processing rate\t%d%%\n", stats.ProcessingRate)
	for tier, n := range stats.ByTier {
		fmt.Fprintf(w, "tier %s\t%d\n", tier, n)
	}
	return w.Flush()
}

func runSweep() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	cutoff := time.Now().Add(-cfg.RetentionMaxAge())
	n, err := db.DeleteProcessedBefore(context.Background(), cutoff, cfg.Retention.Tiers)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Fprintf(os.Stderr, "removed %d trends older than %s\n", n, cutoff.Format(time.RFC3339))
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	log := logging.New(cfg.Logging.Level)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, buildScanner(cfg, db, log), buildProcessor(cfg, db, log), cfg.Selector, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	log := logging.New(cfg.Logging.Level)

	if cfg.Generator.APIKey == "" {
		log.Warn("generator api key not set, article generation will fail until GROQ_API_KEY is provided")
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	scanner := buildScanner(cfg, db, log)
	processor := buildProcessor(cfg, db, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched, err := scheduler.New(db, scanner, processor, cfg, log)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}
	go sched.Start(ctx)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	srv := server.New(db, scanner, processor, cfg.Selector, port)
	return srv.ListenAndServe()
}
