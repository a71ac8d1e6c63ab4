package scrape

import (
	"context"

	"golang.org/x/sync/semaphore"

	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/scrape/util"
)

// RunAPI streams batches from a structured-feed source. Terms are fetched
// with bounded concurrency, but batches are emitted strictly in term order
// so the ordering contract matches the browser orchestrator's.
func (o *Orchestrator) RunAPI(ctx context.Context, src APISource, skip SkipSet) (<-chan Batch, <-chan error) {
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

		terms := src.Terms()
		results := make([][]domain.JobPosting, len(terms))

		limit := o.cfg.Sources.Adzuna.TermConcurrency
		if limit <= 0 {
			limit = 1
		}
		sem := semaphore.NewWeighted(int64(limit))

		done := make(chan int, len(terms))
		for i, term := range terms {
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			go func(i int, term string) {
				defer sem.Release(1)

				jobs, err := src.FetchTerm(ctx, term, pol)
				if err != nil {
					// One term failing never fails its siblings.
					if ctx.Err() == nil {
						log.Error("term fetch failed", "term", term, "err", err)
					}
				}
				results[i] = jobs
				done <- i
			}(i, term)
		}
		for range terms {
			select {
			case <-done:
			case <-ctx.Done():
				return
			}
		}

		// Emit in term order, dropping known and per-run duplicate URLs.
		seen := NewSkipSet(nil)
		total := 0
		want := o.cfg.Sources.Adzuna.ResultsWantedTotal

		for i, term := range terms {
			var fresh []domain.JobPosting
			for _, job := range results[i] {
				if want > 0 && total >= want {
					break
				}
				if knownOrSeen(job, skip, seen) {
					continue
				}
				for _, u := range job.SourceURLs {
					seen.Add(util.CanonicalizeURL(u))
				}
				fresh = append(fresh, job)
				total++
			}

			select {
			case batches <- Batch{Source: src.Name(), Term: term, Page: 1, Jobs: fresh}:
			case <-ctx.Done():
				return
			}
			if want > 0 && total >= want {
				log.Info("result cap reached", "total", total)
				return
			}
		}
	}()

	return batches, errc
}

func knownOrSeen(job domain.JobPosting, skip, seen SkipSet) bool {
	for _, raw := range job.SourceURLs {
		u := util.CanonicalizeURL(raw)
		if seen.Contains(u) || (skip != nil && skip.Contains(u)) {
			return true
		}
	}
	return false
}
