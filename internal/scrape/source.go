// Package scrape drives paginated listing walks across job sources, fetching
// detail pages under bounded concurrency and emitting one batch of normalized
// postings per listing page.
package scrape

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/scrape/util"
)

// SkipSet holds source URLs the caller already knows about. It is read-only
// for the duration of a run; the core never mutates it.
//
// Entries are stored canonicalized, and every lookup canonicalizes its key
// first, so a stored URL and a freshly scraped one match even when they
// differ only in tracking params, query order, or host casing.
type SkipSet = mapset.Set[string]

func NewSkipSet(urls []string) SkipSet {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, u := range urls {
		s.Add(util.CanonicalizeURL(u))
	}
	return s
}

// Source is the capability interface a browser-driven site supplies. The
// orchestrator is written once against this interface; adding a site means
// implementing it, nothing more.
type Source interface {
	Name() string

	// Terms returns the search terms for this source in their configured
	// order. Emission order across batches follows this order.
	Terms() []string

	// ListingURL builds the listing-page URL for one term and page under the
	// resolved run policy.
	ListingURL(term string, page int, pol policy.RunPolicy) string

	// ExtractLinks pulls candidate detail-page links out of listing HTML.
	// An empty result means "no more pages for this term".
	ExtractLinks(html string) ([]string, error)

	// ExtractDetail turns a detail page into a posting. Returning an error
	// drops this link only; siblings are unaffected.
	ExtractDetail(html, url string) (domain.JobPosting, error)
}

// APISource is the structured-feed counterpart of Source for aggregation
// APIs that return whole records instead of pages to walk.
type APISource interface {
	Name() string
	Terms() []string

	// FetchTerm returns the normalized postings for one search term.
	FetchTerm(ctx context.Context, term string, pol policy.RunPolicy) ([]domain.JobPosting, error)
}

// Batch is the set of postings produced from one listing page (or, for API
// sources, one search term). Record order inside a batch is not meaningful.
type Batch struct {
	Source string
	Term   string
	Page   int
	Jobs   []domain.JobPosting
}
