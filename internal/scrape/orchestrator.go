package scrape

import (
	"context"
	"fmt"

	"aujobs-engine/internal/browser"
	"aujobs-engine/internal/config"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/scrape/util"
	"aujobs-engine/pkg/logging"
)

// Orchestrator walks one source at a time: listing pages strictly in
// sequence, detail pages within a listing page concurrently up to the
// configured cap.
type Orchestrator struct {
	engine  browser.Engine
	cfg     config.Config
	limiter *util.HostLimiter
	log     *logging.Logger
}

func New(engine browser.Engine, cfg config.Config, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		engine:  engine,
		cfg:     cfg,
		limiter: util.NewHostLimiter(cfg.Scrape.RequestsPerSecond, cfg.Scrape.RequestBurst),
		log:     log,
	}
}

// Run scrapes src and streams one Batch per listing page. The batch channel
// is unbuffered, so a slow consumer holds the producer to a single in-flight
// batch; cancelling ctx stops the run and releases the browsing session.
//
// Batches arrive in page order per term, in term order. The error channel
// carries at most one error: a failure to establish the browsing session (or
// a policy/config failure) aborts the whole run, while listing-page errors
// only end the current term and detail-page errors only drop one record.
func (o *Orchestrator) Run(ctx context.Context, src Source, skip SkipSet) (<-chan Batch, <-chan error) {
	batches := make(chan Batch)
	errc := make(chan error, 1)

	go func() {
		defer close(batches)
		defer close(errc)

		log := o.log.With("source", src.Name())

		pol, err := policy.Resolve(src.Name(), o.cfg)
		if err != nil {
			errc <- err
			return
		}

		session, err := o.engine.NewSession(ctx)
		if err != nil {
			errc <- fmt.Errorf("%s: establish browsing session: %w", src.Name(), err)
			return
		}
		defer session.Close()

		listing, err := session.NewPage()
		if err != nil {
			errc <- fmt.Errorf("%s: open listing page: %w", src.Name(), err)
			return
		}
		defer listing.Close()

		log.Info("starting scrape", "initial_run", pol.InitialRun, "max_pages", pol.MaxPages)

		for _, term := range src.Terms() {
			log.Info("searching", "term", term)

			for page := 1; page <= pol.MaxPages; page++ {
				url := src.ListingURL(term, page, pol)

				if err := o.limiter.WaitURL(ctx, url); err != nil {
					if ctx.Err() != nil {
						return
					}
					// A limiter that can never admit a request (burst 0,
					// zero rate) would otherwise end the run silently.
					errc <- fmt.Errorf("%s: rate limiter: %w", src.Name(), err)
					return
				}
				html, err := listing.Content(ctx, url)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					// A broken listing page ends this term only.
					log.Error("listing page failed", "term", term, "page", page, "err", err)
					break
				}

				links, err := src.ExtractLinks(html)
				if err != nil {
					log.Error("listing page unparsable", "term", term, "page", page, "err", err)
					break
				}
				if len(links) == 0 {
					log.Info("no more results", "term", term, "page", page)
					break
				}

				fresh := filterKnown(links, skip, log)
				// All-known pages still advance: deeper pages may hold new
				// postings on an initial run.
				jobs := o.fetchDetails(ctx, session, src, fresh)
				if ctx.Err() != nil {
					return
				}

				log.Info("page scraped", "term", term, "page", page,
					"links", len(links), "new", len(fresh), "collected", len(jobs))

				select {
				case batches <- Batch{Source: src.Name(), Term: term, Page: page, Jobs: jobs}:
				case <-ctx.Done():
					return
				}
			}
		}

		log.Info("scrape finished")
	}()

	return batches, errc
}

// filterKnown drops links the caller has already stored. The skip set is
// shared read-only state; it is never written here.
func filterKnown(links []string, skip SkipSet, log *logging.Logger) []string {
	if skip == nil {
		return links
	}
	fresh := make([]string, 0, len(links))
	for _, link := range links {
		if skip.Contains(util.CanonicalizeURL(link)) {
			continue
		}
		fresh = append(fresh, link)
	}
	if skipped := len(links) - len(fresh); skipped > 0 {
		log.Info("skipping already-known jobs", "skipped", skipped)
	}
	return fresh
}
