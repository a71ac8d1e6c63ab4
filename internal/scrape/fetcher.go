package scrape

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"aujobs-engine/internal/browser"
	"aujobs-engine/internal/domain"
)

// fetchDetails retrieves and extracts every link with at most
// cfg.Scrape.Concurrency fetches in flight. One failing link is logged and
// dropped without touching its siblings. Output order is whatever completion
// order happens to be; callers must not rely on it.
func (o *Orchestrator) fetchDetails(ctx context.Context, session browser.Session, src Source, links []string) []domain.JobPosting {
	if len(links) == 0 {
		return nil
	}

	log := o.log.With("source", src.Name())
	sem := semaphore.NewWeighted(int64(o.cfg.Scrape.Concurrency))

	var (
		mu  sync.Mutex
		out []domain.JobPosting
		wg  sync.WaitGroup
	)

	for _, link := range links {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // ctx cancelled; workers already running still drain
		}
		wg.Add(1)
		go func(link string) {
			defer wg.Done()
			defer sem.Release(1)

			job, err := o.fetchOne(ctx, session, src, link)
			if err != nil {
				if ctx.Err() == nil {
					log.Error("job fetch failed", "url", link, "err", err)
				}
				return
			}

			mu.Lock()
			out = append(out, job)
			mu.Unlock()
			log.Info("collected job", "title", job.Title, "company", job.Company)
		}(link)
	}

	wg.Wait()
	return out
}

func (o *Orchestrator) fetchOne(ctx context.Context, session browser.Session, src Source, link string) (domain.JobPosting, error) {
	if err := o.limiter.WaitURL(ctx, link); err != nil {
		return domain.JobPosting{}, err
	}

	page, err := session.NewPage()
	if err != nil {
		return domain.JobPosting{}, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	html, err := page.Content(ctx, link)
	if err != nil {
		return domain.JobPosting{}, err
	}

	job, err := src.ExtractDetail(html, link)
	if err != nil {
		return domain.JobPosting{}, err
	}
	if errs := job.Validate(); len(errs) > 0 {
		return domain.JobPosting{}, fmt.Errorf("invalid posting: %v", errs)
	}
	job.EnsureFingerprint()
	return job, nil
}
