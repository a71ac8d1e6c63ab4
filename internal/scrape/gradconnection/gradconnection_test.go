package gradconnection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aujobs-engine/internal/config"
	"aujobs-engine/internal/policy"
)

func testSource() *Source {
	cfg := config.Defaults()
	cfg.Sources.GradConnection.Keywords = []string{"engineering"}
	return New(cfg)
}

func TestListingURL(t *testing.T) {
	got := testSource().ListingURL("software engineering", 2, policy.RunPolicy{})
	assert.Equal(t, "https://au.gradconnection.com/jobs/australia/?title=software+engineering&page=2", got)
}

func TestTermsFallBackToGlobalKeywords(t *testing.T) {
	cfg := config.Defaults()
	cfg.Scrape.SearchKeywords = []string{"data"}
	cfg.Sources.GradConnection.Keywords = nil
	assert.Equal(t, []string{"data"}, New(cfg).Terms())
}

func TestExtractLinks(t *testing.T) {
	html := `<html><body>
		<a class="box-header-title" href="/employers/acme/jobs/grad-dev/">Grad Dev</a>
		<a class="box-header-title" href="https://au.gradconnection.com/employers/beta/jobs/intern/">Intern</a>
	</body></html>`

	links, err := testSource().ExtractLinks(html)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://au.gradconnection.com/employers/acme/jobs/grad-dev/",
		"https://au.gradconnection.com/employers/beta/jobs/intern/",
	}, links)
}

func TestExtractLinksNotifyMeEndsPagination(t *testing.T) {
	html := `<html><body>
		<a class="box-header-title" href="/employers/acme/jobs/grad-dev/">Grad Dev</a>
		<a class="box-header-title" href="/notify-me/engineering">Get notified</a>
	</body></html>`

	links, err := testSource().ExtractLinks(html)
	require.NoError(t, err)
	assert.Empty(t, links, "notify-me card means results are exhausted")
}

func TestExtractDetail(t *testing.T) {
	html := `<html><body>
		<h1 class="employers-profile-h1">Graduate Engineer</h1>
		<h1 class="employers-panel-title">Acme</h1>
		<ul class="box-content">
			<li><strong>Location:</strong> Sydney, Melbourne</li>
			<li><strong>Posted:</strong> 2026-03-01T00:00:00Z</li>
			<li><strong>Application Deadline:</strong> 2nd Mar 2026, 5:00 PM</li>
		</ul>
		<div class="campaign-content-container"><p>Build things with us. Salary $70,000 - $80,000.</p></div>
	</body></html>`

	job, err := testSource().ExtractDetail(html, "https://au.gradconnection.com/employers/acme/jobs/grad-eng/")
	require.NoError(t, err)

	assert.Equal(t, "Graduate Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	require.Len(t, job.Locations, 2)
	assert.Equal(t, "Sydney", job.Locations[0].City)
	assert.Equal(t, "Melbourne", job.Locations[1].City)
	assert.Equal(t, "2026-03-01", job.PostedAt)
	assert.Equal(t, "2026-03-02", job.ClosingDate)
	require.NotNil(t, job.Salary)
	assert.Equal(t, 70000.0, job.Salary.AnnualMin)
	assert.Equal(t, 80000.0, job.Salary.AnnualMax)
	assert.Empty(t, job.Validate())
}

func TestExtractDetailOverviewPanel(t *testing.T) {
	html := `<html><body>
		<h1 class="employers-profile-h1">Intern</h1>
		<h1 class="employers-panel-title">Beta Corp</h1>
		<div class="job-overview-container">
			<dl>
				<dt>Location</dt><dd>Brisbane</dd>
				<dt>Salary</dt><dd>$35/hour</dd>
			</dl>
		</div>
		<div class="job-description-container"><p>Summer internship program.</p></div>
	</body></html>`

	job, err := testSource().ExtractDetail(html, "https://au.gradconnection.com/x")
	require.NoError(t, err)
	require.Len(t, job.Locations, 1)
	assert.Equal(t, "Brisbane", job.Locations[0].City)
	require.NotNil(t, job.Salary)
	assert.Equal(t, 72800.0, job.Salary.AnnualMin)
}

func TestExtractDetailSkipsEventPostings(t *testing.T) {
	cases := map[string]string{
		"signup button": `<html><body><h1 class="employers-profile-h1">Careers Fair</h1>
			<button>Sign up to event</button></body></html>`,
		"box job type": `<html><body><ul class="box-content">
			<li><strong>Job type:</strong> Event</li></ul></body></html>`,
		"overview job type": `<html><body><div class="job-overview-container">
			<dt>Job Type</dt><dd>Virtual Event</dd></div></body></html>`,
	}
	for name, html := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := testSource().ExtractDetail(html, "https://au.gradconnection.com/x")
			assert.ErrorIs(t, err, ErrEventPosting)
		})
	}
}
