package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aujobs-engine/internal/browser"
	"aujobs-engine/internal/config"
	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/policy"
	"aujobs-engine/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fake engine echoes the requested URL back as "HTML"; the fake source
// then looks its scripted listings up by that URL. This keeps the whole
// orchestration path real while stubbing only the browser.

type fakeEngine struct {
	mu         sync.Mutex
	sessionErr error
	sessions   []*fakeSession

	navFail map[string]bool

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (e *fakeEngine) NewSession(ctx context.Context) (browser.Session, error) {
	if e.sessionErr != nil {
		return nil, e.sessionErr
	}
	s := &fakeSession{engine: e}
	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()
	return s, nil
}

func (e *fakeEngine) Close() error { return nil }

type fakeSession struct {
	engine *fakeEngine
	closed atomic.Bool
}

func (s *fakeSession) NewPage() (browser.Page, error) {
	return &fakePage{engine: s.engine}, nil
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

type fakePage struct {
	engine *fakeEngine
}

func (p *fakePage) Content(ctx context.Context, url string) (string, error) {
	cur := p.engine.inFlight.Add(1)
	for {
		max := p.engine.maxInFlight.Load()
		if cur <= max || p.engine.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	p.engine.inFlight.Add(-1)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.engine.navFail[url] {
		return "", errors.New("navigation failed")
	}
	return url, nil
}

func (p *fakePage) Close() error { return nil }

type fakeSource struct {
	name      string
	terms     []string
	listings  map[string][]string
	detailErr map[string]bool
}

func (s *fakeSource) Name() string    { return s.name }
func (s *fakeSource) Terms() []string { return s.terms }

func (s *fakeSource) ListingURL(term string, page int, _ policy.RunPolicy) string {
	return fmt.Sprintf("https://x/%s/page/%d", strings.ReplaceAll(term, " ", "-"), page)
}

func (s *fakeSource) ExtractLinks(html string) ([]string, error) {
	return s.listings[html], nil
}

func (s *fakeSource) ExtractDetail(_, url string) (domain.JobPosting, error) {
	if s.detailErr[url] {
		return domain.JobPosting{}, errors.New("missing required fields")
	}
	return domain.JobPosting{
		Title:       "Job " + url,
		Company:     "Acme",
		Description: "A description long enough to pass validation.",
		Locations:   []domain.Location{{City: "Sydney", State: "NSW"}},
		SourceURLs:  []string{url},
		Platforms:   []string{s.name},
	}, nil
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Scrape.MaxPages = 20
	cfg.Scrape.Concurrency = 3
	cfg.Scrape.RequestsPerSecond = 10000
	cfg.Scrape.RequestBurst = 1000
	return cfg
}

func drain(t *testing.T, batches <-chan Batch, errc <-chan error) ([]Batch, error) {
	t.Helper()
	var out []Batch
	for b := range batches {
		out = append(out, b)
	}
	return out, <-errc
}

func TestRunStopsTermOnEmptyPage(t *testing.T) {
	// Page 2 yields no links: exactly one batch despite max_pages=20.
	src := &fakeSource{
		name:  "seek",
		terms: []string{"software engineer"},
		listings: map[string][]string{
			"https://x/software-engineer/page/1": {"https://x/job/1", "https://x/job/2"},
		},
	}
	eng := &fakeEngine{}
	o := New(eng, testConfig(), logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].Page)
	assert.Len(t, batches[0].Jobs, 2)
}

func TestRunSkipSetExclusion(t *testing.T) {
	src := &fakeSource{
		name:  "seek",
		terms: []string{"go"},
		listings: map[string][]string{
			"https://x/go/page/1": {"https://x/job/1", "https://x/job/2"},
		},
	}
	eng := &fakeEngine{}
	o := New(eng, testConfig(), logging.NewNop())

	skip := NewSkipSet([]string{"https://x/job/1"})
	bc, ec := o.Run(context.Background(), src, skip)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Jobs, 1)
	assert.Equal(t, []string{"https://x/job/2"}, batches[0].Jobs[0].SourceURLs)
}

func TestRunSkipSetMatchesTrackedURLs(t *testing.T) {
	// Known URLs are stored as scraped, tracking params included. The same
	// link seen again must count as known regardless of those params.
	src := &fakeSource{
		name:  "seek",
		terms: []string{"go"},
		listings: map[string][]string{
			"https://x/go/page/1": {"https://x/job/1?utm_medium=api&se=a", "https://x/job/2"},
		},
	}
	o := New(&fakeEngine{}, testConfig(), logging.NewNop())

	skip := NewSkipSet([]string{"https://x/job/1?utm_medium=api&se=a"})
	bc, ec := o.Run(context.Background(), src, skip)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Jobs, 1)
	assert.Equal(t, []string{"https://x/job/2"}, batches[0].Jobs[0].SourceURLs)
}

func TestRunAllKnownPageStillAdvances(t *testing.T) {
	src := &fakeSource{
		name:  "seek",
		terms: []string{"go"},
		listings: map[string][]string{
			"https://x/go/page/1": {"https://x/job/1"},
			"https://x/go/page/2": {"https://x/job/2"},
		},
	}
	eng := &fakeEngine{}
	o := New(eng, testConfig(), logging.NewNop())

	skip := NewSkipSet([]string{"https://x/job/1"})
	bc, ec := o.Run(context.Background(), src, skip)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)

	// Page 1 is emitted empty, page 2 carries the new job.
	require.Len(t, batches, 2)
	assert.Empty(t, batches[0].Jobs)
	require.Len(t, batches[1].Jobs, 1)
}

func TestRunRespectsMaxPages(t *testing.T) {
	cfg := testConfig()
	cfg.Scrape.MaxPages = 2

	listings := map[string][]string{}
	for page := 1; page <= 5; page++ {
		listings[fmt.Sprintf("https://x/go/page/%d", page)] = []string{fmt.Sprintf("https://x/job/%d", page)}
	}
	src := &fakeSource{name: "seek", terms: []string{"go"}, listings: listings}
	o := New(&fakeEngine{}, cfg, logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}

func TestRunTermOrderPreserved(t *testing.T) {
	src := &fakeSource{
		name:  "seek",
		terms: []string{"alpha", "beta"},
		listings: map[string][]string{
			"https://x/alpha/page/1": {"https://x/job/a1"},
			"https://x/alpha/page/2": {"https://x/job/a2"},
			"https://x/beta/page/1":  {"https://x/job/b1"},
		},
	}
	o := New(&fakeEngine{}, testConfig(), logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"alpha", "alpha", "beta"}, []string{batches[0].Term, batches[1].Term, batches[2].Term})
	assert.Equal(t, []int{1, 2, 1}, []int{batches[0].Page, batches[1].Page, batches[2].Page})
}

func TestRunListingErrorEndsTermOnly(t *testing.T) {
	src := &fakeSource{
		name:  "seek",
		terms: []string{"alpha", "beta"},
		listings: map[string][]string{
			"https://x/alpha/page/1": {"https://x/job/a1"},
			// alpha page 2 navigation fails; beta must still run
			"https://x/beta/page/1": {"https://x/job/b1"},
		},
	}
	eng := &fakeEngine{navFail: map[string]bool{"https://x/alpha/page/2": true}}
	o := New(eng, testConfig(), logging.NewNop())

	// alpha page 2 would be requested because page 1 had links.
	src.listings["https://x/alpha/page/2"] = []string{"unused"}

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "alpha", batches[0].Term)
	assert.Equal(t, "beta", batches[1].Term)
}

func TestRunDetailFailureIsolated(t *testing.T) {
	src := &fakeSource{
		name:  "seek",
		terms: []string{"go"},
		listings: map[string][]string{
			"https://x/go/page/1": {"https://x/job/1", "https://x/job/2", "https://x/job/3"},
		},
		detailErr: map[string]bool{"https://x/job/2": true},
	}
	o := New(&fakeEngine{}, testConfig(), logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Jobs, 2)
	for _, j := range batches[0].Jobs {
		assert.NotEqual(t, []string{"https://x/job/2"}, j.SourceURLs)
	}
}

func TestRunSessionErrorAborts(t *testing.T) {
	src := &fakeSource{name: "seek", terms: []string{"go"}}
	eng := &fakeEngine{sessionErr: errors.New("browser exploded")}
	o := New(eng, testConfig(), logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	assert.Empty(t, batches)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browsing session")
}

func TestRunSurfacesLimiterMisconfiguration(t *testing.T) {
	// A burst of 0 makes every Wait fail without the context being done;
	// that must come back on the error channel, not look like cancellation.
	cfg := testConfig()
	cfg.Scrape.RequestBurst = 0

	src := &fakeSource{
		name:  "seek",
		terms: []string{"go"},
		listings: map[string][]string{
			"https://x/go/page/1": {"https://x/job/1"},
		},
	}
	o := New(&fakeEngine{}, cfg, logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	assert.Empty(t, batches)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestRunReleasesSessionOnCancel(t *testing.T) {
	src := &fakeSource{
		name:  "seek",
		terms: []string{"go"},
		listings: map[string][]string{
			"https://x/go/page/1": {"https://x/job/1"},
			"https://x/go/page/2": {"https://x/job/2"},
		},
	}
	eng := &fakeEngine{}
	o := New(eng, testConfig(), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	batches, errc := o.Run(ctx, src, nil)

	// Take the first batch, then walk away.
	<-batches
	cancel()
	for range batches {
	}
	<-errc

	require.Len(t, eng.sessions, 1)
	assert.True(t, eng.sessions[0].closed.Load(), "session must be released on early termination")
}

func TestRunReleasesSessionOnCompletion(t *testing.T) {
	src := &fakeSource{
		name:     "seek",
		terms:    []string{"go"},
		listings: map[string][]string{},
	}
	eng := &fakeEngine{}
	o := New(eng, testConfig(), logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	_, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, eng.sessions, 1)
	assert.True(t, eng.sessions[0].closed.Load())
}

func TestFetchDetailsHonorsConcurrencyCap(t *testing.T) {
	cfg := testConfig()
	cfg.Scrape.Concurrency = 2

	links := make([]string, 12)
	for i := range links {
		links[i] = fmt.Sprintf("https://x/job/%d", i)
	}
	src := &fakeSource{
		name:     "seek",
		terms:    []string{"go"},
		listings: map[string][]string{"https://x/go/page/1": links},
	}
	eng := &fakeEngine{}
	o := New(eng, cfg, logging.NewNop())

	bc, ec := o.Run(context.Background(), src, nil)
	batches, err := drain(t, bc, ec)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Jobs, 12)

	// One listing fetch plus at most two concurrent detail fetches.
	assert.LessOrEqual(t, eng.maxInFlight.Load(), int64(cfg.Scrape.Concurrency)+1)
}
