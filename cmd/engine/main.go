package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"aujobs-engine/internal/browser"
	"aujobs-engine/internal/config"
	"aujobs-engine/internal/scheduler"
	"aujobs-engine/internal/scrape"
	"aujobs-engine/internal/scrape/adzuna"
	"aujobs-engine/internal/scrape/gradconnection"
	"aujobs-engine/internal/scrape/prosple"
	"aujobs-engine/internal/scrape/seek"
	"aujobs-engine/internal/secrets"
	"aujobs-engine/internal/store"
	"aujobs-engine/pkg/logging"
)

func main() {
	dataDir := os.Getenv("SCRAPER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logging.New("info").Fatal("create data dir", "err", err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		logging.New("info").Fatal("config bootstrap failed", "err", err)
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		logging.New("info").Fatal("config load failed", "path", userCfgPath, "err", err)
	}

	log := logging.New(cfg.App.LogLevel)
	defer log.Sync()

	if cfg.Sources.Adzuna.Enabled && (cfg.Sources.Adzuna.AppID == "" || cfg.Sources.Adzuna.AppKey == "") {
		appID, appKey, err := secrets.AdzunaCredentials()
		if err != nil {
			log.Fatal("adzuna enabled but credentials missing", "err", err)
		}
		cfg.Sources.Adzuna.AppID = appID
		cfg.Sources.Adzuna.AppKey = appKey
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	// One engine process per data dir: two writers sharing one sqlite file
	// corrupt each other's skip sets.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatal("acquire data dir lock", "err", err)
	}
	if !locked {
		log.Fatal("another engine instance is already running", "data_dir", dataDir)
	}
	defer lock.Unlock()

	db, err := store.Open(filepath.Join(dataDir, "aujobs.db"))
	if err != nil {
		log.Fatal("open database", "err", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(ctx context.Context) error {
		return runScrape(ctx, cfg, db, log)
	}

	if interval := cfg.App.RunIntervalMinutes; interval > 0 {
		log.Info("running on interval", "minutes", interval)
		scheduler.Every(ctx, time.Duration(interval)*time.Minute, "scrape", log, run)
		return
	}
	if err := run(ctx); err != nil {
		log.Fatal("scrape run failed", "err", err)
	}
}

// runScrape executes one full pass over every enabled source. Sources run
// concurrently; each one's batches are persisted as they arrive.
func runScrape(ctx context.Context, cfg config.Config, db *store.DB, log *logging.Logger) error {
	known, err := db.KnownURLs(ctx)
	if err != nil {
		return err
	}
	skip := scrape.NewSkipSet(known)
	log.Info("starting run", "initial_run", cfg.Scrape.InitialRun, "known_urls", len(known))

	browserSources := enabledBrowserSources(cfg)

	var engine browser.Engine
	if len(browserSources) > 0 {
		engine, err = browser.NewPlaywrightEngine()
		if err != nil {
			return err
		}
		defer engine.Close()
	}
	orch := scrape.New(engine, cfg, log)

	var added atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	persist := func(batches <-chan scrape.Batch, errc <-chan error) error {
		for batch := range batches {
			for _, job := range batch.Jobs {
				isNew, err := db.UpsertPosting(gctx, job)
				if err != nil {
					log.Error("persist posting failed", "fingerprint", job.Fingerprint, "err", err)
					continue
				}
				if isNew {
					added.Add(1)
				}
			}
		}
		return <-errc
	}

	for _, src := range browserSources {
		src := src
		g.Go(func() error {
			return persist(orch.Run(gctx, src, skip))
		})
	}

	if cfg.Sources.Adzuna.Enabled {
		api, err := adzuna.New(cfg)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return persist(orch.RunAPI(gctx, api, skip))
		})
	}

	err = g.Wait()
	total, cerr := db.CountPostings(ctx)
	if cerr == nil {
		log.Info("run finished", "new_postings", added.Load(), "total_postings", total)
	}
	return err
}

func enabledBrowserSources(cfg config.Config) []scrape.Source {
	var sources []scrape.Source
	if cfg.Sources.Seek.Enabled {
		sources = append(sources, seek.New(cfg))
	}
	if cfg.Sources.GradConnection.Enabled {
		sources = append(sources, gradconnection.New(cfg))
	}
	if cfg.Sources.Prosple.Enabled {
		sources = append(sources, prosple.New(cfg))
	}
	return sources
}
